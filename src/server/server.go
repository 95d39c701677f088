package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/veedubyou/stem-split-be/src/server/application"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	cloudstorage "github.com/veedubyou/stem-split-be/src/shared/cloud_storage/entity"
	"github.com/veedubyou/stem-split-be/src/shared/cloud_storage/store"
	"github.com/veedubyou/stem-split-be/src/shared/config"
	"github.com/veedubyou/stem-split-be/src/shared/lib/env"
	"github.com/veedubyou/stem-split-be/src/shared/lib/rabbitmq"
	"github.com/veedubyou/stem-split-be/src/shared/values/dev"
	"github.com/veedubyou/stem-split-be/src/shared/values/envvar"
	"github.com/veedubyou/stem-split-be/src/shared/values/prod"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		commaSeparatedOrigins := envvar.MustGet(envvar.ALLOWED_FE_ORIGINS)
		allowedOrigins := strings.Split(commaSeparatedOrigins, ",")

		appConfig = application.Config{
			DynamoConfig: config.ProdDynamo{
				AccessKeyID:     envvar.MustGet(envvar.AWS_ACCESS_KEY_ID),
				SecretAccessKey: envvar.MustGet(envvar.AWS_SECRET_ACCESS_KEY),
				Region:          prod.DynamoDBRegion,
			},
			Publisher:          makePublisher(),
			ModelFileStore:     makeModelFileStore(),
			RemoteModelURL:     remoteModelURL(),
			SpleeterBinPath:    config.SpleeterBinPath(),
			UploadDirPath:      envvar.GetOrDefault(envvar.UPLOAD_FOLDER, prod.UploadDirPath),
			OutputDirPath:      envvar.GetOrDefault(envvar.OUTPUT_FOLDER, prod.OutputDirPath),
			ModelDirPath:       envvar.GetOrDefault(envvar.MODEL_FOLDER, prod.ModelDirPath),
			RequiredModels:     requiredModels(),
			WorkerCount:        intEnv(envvar.NUM_WORKERS, 2),
			QueueDepth:         intEnv(envvar.QUEUE_DEPTH, 8),
			JobTimeout:         jobTimeout(),
			CORSAllowedOrigins: allowedOrigins,
			Port:               ":" + envvar.GetOrDefault(envvar.PORT, "5000"),
			Log:                true,
		}

	case env.Development:
		appConfig = application.Config{
			DynamoConfig:       dev.DynamoConfig,
			SpleeterBinPath:    config.SpleeterBinPath(),
			UploadDirPath:      envvar.GetOrDefault(envvar.UPLOAD_FOLDER, dev.UploadDirPath),
			OutputDirPath:      envvar.GetOrDefault(envvar.OUTPUT_FOLDER, dev.OutputDirPath),
			ModelDirPath:       envvar.GetOrDefault(envvar.MODEL_FOLDER, dev.ModelDirPath),
			RequiredModels:     requiredModels(),
			WorkerCount:        intEnv(envvar.NUM_WORKERS, 2),
			QueueDepth:         intEnv(envvar.QUEUE_DEPTH, 8),
			JobTimeout:         jobTimeout(),
			CORSAllowedOrigins: []string{"*"},
			Port:               ":" + envvar.GetOrDefault(envvar.PORT, "5000"),
			Log:                true,
		}

	default:
		panic("Unexpected environment")
	}

	app := application.NewApp(appConfig)
	if err := app.Start(); err != nil {
		panic(err)
	}
}

// makePublisher connects to RabbitMQ if one is configured. Completion
// events are a bonus on top of the synchronous response, so no broker
// just means no events
func makePublisher() rabbitmq.Publisher {
	rabbitMQURL := envvar.GetOrDefault(envvar.RABBITMQ_URL, "")
	if rabbitMQURL == "" {
		return nil
	}

	queueName := envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME)

	publisher, err := rabbitmq.NewQueuePublisher(rabbitMQURL, queueName)
	if err != nil {
		panic(err)
	}

	return publisher
}

func makeModelFileStore() cloudstorage.FileStore {
	jsonKey := envvar.GetOrDefault(envvar.GOOGLE_CLOUD_KEY, "")
	if jsonKey == "" {
		return nil
	}

	fileStore, err := store.NewGoogleFileStore(jsonKey)
	if err != nil {
		panic(err)
	}

	return fileStore
}

func remoteModelURL() string {
	bucketName := envvar.GetOrDefault(envvar.GOOGLE_CLOUD_STORAGE_BUCKET_NAME, "")
	if bucketName == "" {
		return ""
	}

	return fmt.Sprintf("%s/%s/models", store.GOOGLE_STORAGE_HOST, bucketName)
}

func requiredModels() []engine.SplitType {
	commaSeparatedModels := envvar.GetOrDefault(envvar.REQUIRED_MODELS, string(engine.DefaultSplitType))

	splitTypes := []engine.SplitType{}
	for _, model := range strings.Split(commaSeparatedModels, ",") {
		splitType, err := engine.ConvertToSplitType(strings.TrimSpace(model))
		if err != nil {
			panic(err)
		}

		splitTypes = append(splitTypes, splitType)
	}

	return splitTypes
}

func jobTimeout() time.Duration {
	return time.Duration(intEnv(envvar.JOB_TIMEOUT_SECONDS, 300)) * time.Second
}

func intEnv(key string, defaultVal int) int {
	val := envvar.GetOrDefault(key, strconv.Itoa(defaultVal))

	parsed, err := strconv.Atoi(val)
	if err != nil {
		panic(fmt.Sprintf("Env variable %s is not a number: %s", key, val))
	}

	return parsed
}
