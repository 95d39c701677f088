package envvar

import (
	"fmt"
	"os"
)

const (
	AWS_ACCESS_KEY_ID                = "AWS_ACCESS_KEY_ID"
	AWS_SECRET_ACCESS_KEY            = "AWS_SECRET_ACCESS_KEY"
	RABBITMQ_URL                     = "RABBITMQ_URL"
	RABBITMQ_QUEUE_NAME              = "RABBITMQ_QUEUE_NAME"
	GOOGLE_CLOUD_KEY                 = "GOOGLE_CLOUD_KEY"
	GOOGLE_CLOUD_STORAGE_BUCKET_NAME = "GOOGLE_CLOUD_STORAGE_BUCKET_NAME"
	UPLOAD_FOLDER                    = "UPLOAD_FOLDER"
	OUTPUT_FOLDER                    = "OUTPUT_FOLDER"
	MODEL_FOLDER                     = "MODEL_FOLDER"
	SPLEETER_BIN_PATH                = "SPLEETER_BIN_PATH"
	REQUIRED_MODELS                  = "REQUIRED_MODELS"
	NUM_WORKERS                      = "NUM_WORKERS"
	QUEUE_DEPTH                      = "QUEUE_DEPTH"
	JOB_TIMEOUT_SECONDS              = "JOB_TIMEOUT_SECONDS"
	PORT                             = "PORT"
	ALLOWED_FE_ORIGINS               = "ALLOWED_FE_ORIGINS"
)

func MustGet(key string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet {
		panic(fmt.Sprintf("No env variable found for key %s", key))
	}

	if val == "" {
		panic(fmt.Sprintf("Env variable is empty for key %s", key))
	}

	return val
}

func GetOrDefault(key string, defaultVal string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet || val == "" {
		return defaultVal
	}

	return val
}
