package prod

// DynamoDB
const (
	DynamoDBRegion = "us-east-2"
)

// Storage roots - these match the mount points baked into the image
const (
	UploadDirPath = "/app/uploads"
	OutputDirPath = "/app/outputs"
	ModelDirPath  = "/app/models"
)
