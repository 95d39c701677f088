package application

import (
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cockroachdb/errors"
	"github.com/guregu/dynamo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/veedubyou/stem-split-be/src/server/internal/executor"
	healthgateway "github.com/veedubyou/stem-split-be/src/server/internal/health/gateway"
	jobentity "github.com/veedubyou/stem-split-be/src/server/internal/job/entity"
	jobgateway "github.com/veedubyou/stem-split-be/src/server/internal/job/gateway"
	jobstorage "github.com/veedubyou/stem-split-be/src/server/internal/job/storage"
	jobusecase "github.com/veedubyou/stem-split-be/src/server/internal/job/usecase"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	separationgateway "github.com/veedubyou/stem-split-be/src/server/internal/separation/gateway"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/modelload"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/pool"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/registry"
	separationusecase "github.com/veedubyou/stem-split-be/src/server/internal/separation/usecase"
	cloudstorage "github.com/veedubyou/stem-split-be/src/shared/cloud_storage/entity"
	"github.com/veedubyou/stem-split-be/src/shared/config"
	dynamolib "github.com/veedubyou/stem-split-be/src/shared/lib/dynamo"
	"github.com/veedubyou/stem-split-be/src/shared/lib/rabbitmq"
	"github.com/veedubyou/stem-split-be/src/shared/lib/working_dir"
)

type HTTPMethod string

const (
	GET    HTTPMethod = "GET"
	POST   HTTPMethod = "POST"
	PUT    HTTPMethod = "PUT"
	DELETE HTTPMethod = "DELETE"
)

type App struct {
	echo           *echo.Echo
	registry       *registry.ModelRegistry
	requiredModels []engine.SplitType
	port           string
}

type Config struct {
	// JobStore overrides the DynamoDB-backed store when set. Tests
	// inject an in-memory store here
	JobStore     jobentity.Store
	DynamoConfig config.Dynamo

	// Publisher may be nil, which disables completion events
	Publisher rabbitmq.Publisher

	// Executor overrides the real process executor when set
	Executor executor.Executor

	// ModelFileStore is where pretrained weights get synced down from
	// when they aren't already under ModelDirPath. Both may be unset
	// when the weights ship with the image
	ModelFileStore cloudstorage.FileStore
	RemoteModelURL string

	SpleeterBinPath string
	UploadDirPath   string
	OutputDirPath   string
	ModelDirPath    string

	RequiredModels []engine.SplitType
	WorkerCount    int
	QueueDepth     int
	JobTimeout     time.Duration

	CORSAllowedOrigins []string
	Port               string
	Log                bool
}

func NewApp(config Config) App {
	e := echo.New()

	if config.Log {
		e.Use(middleware.Logger())
	}

	corsMiddleware := makeCorsMiddleware(config)

	handleRoute := func(method HTTPMethod, path string, handlerFunc echo.HandlerFunc) {
		params := func() (string, echo.HandlerFunc, echo.MiddlewareFunc) {
			return path, handlerFunc, corsMiddleware
		}

		e.OPTIONS(params())

		switch method {
		case GET:
			e.GET(params())
		case POST:
			e.POST(params())
		case PUT:
			e.PUT(params())
		case DELETE:
			e.DELETE(params())
		default:
			panic("unhandled http method!")
		}
	}

	uploadDir := makeWorkingDir(config.UploadDirPath)
	outputDir := makeWorkingDir(config.OutputDirPath)

	jobStore := makeJobStore(config)
	modelRegistry := makeModelRegistry(config)
	workerPool := pool.NewWorkerPool(config.WorkerCount, config.QueueDepth)

	separationGateway := makeSeparationGateway(config, modelRegistry, workerPool, jobStore, uploadDir, outputDir)
	jobGateway := makeJobGateway(jobStore, outputDir)
	healthGateway := healthgateway.NewGateway(modelRegistry, config.RequiredModels)

	handleRoute(GET, "/", healthGateway.Home)
	handleRoute(GET, "/health", healthGateway.Health)
	handleRoute(GET, "/models", separationGateway.ListModels)

	handleRoute(POST, "/separate", separationGateway.Separate)

	handleRoute(GET, "/download/:job_id/:stem", func(c echo.Context) error {
		jobID := c.Param("job_id")
		stemName := c.Param("stem")
		return jobGateway.DownloadStem(c, jobID, stemName)
	})
	handleRoute(DELETE, "/cleanup/:job_id", func(c echo.Context) error {
		jobID := c.Param("job_id")
		return jobGateway.CleanupJob(c, jobID)
	})

	return App{
		echo:           e,
		registry:       modelRegistry,
		requiredModels: config.RequiredModels,
		port:           config.Port,
	}
}

// Start serves HTTP and preloads the required model configurations at
// the same time, so /health is reachable while the models warm up. If
// any required model fails to load the server is brought down - better
// to die loudly at startup than limp along unable to serve
func (a *App) Start() error {
	serverResult := make(chan error, 1)
	go func() {
		serverResult <- a.serve()
	}()

	preloadResult := make(chan error, 1)
	go func() {
		preloadResult <- a.preloadModels()
	}()

	select {
	case err := <-serverResult:
		return err

	case err := <-preloadResult:
		if err != nil {
			_ = a.Stop()
			<-serverResult
			return errors.Wrap(err, "Failed to preload required models")
		}

		return <-serverResult
	}
}

func (a *App) serve() error {
	err := a.echo.Start(a.port)
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "Couldn't start echo server")
	}

	return nil
}

func (a *App) Stop() error {
	err := a.echo.Close()
	if err != nil {
		return errors.Wrap(err, "Failed to stop echo server")
	}

	return nil
}

func (a *App) preloadModels() error {
	for _, splitType := range a.requiredModels {
		log.WithField("splitType", splitType).Info("Preloading model")

		if _, err := a.registry.Engine(splitType); err != nil {
			return errors.Wrapf(err, "Failed to preload model %s", splitType)
		}
	}

	log.Info("All required models are loaded")
	return nil
}

func makeWorkingDir(dirPath string) working_dir.WorkingDir {
	workingDir, err := working_dir.NewWorkingDir(dirPath)
	if err != nil {
		panic(errors.Wrapf(err, "Failed to create working dir at %s", dirPath))
	}

	return workingDir
}

func makeJobStore(config Config) jobentity.Store {
	if config.JobStore != nil {
		return config.JobStore
	}

	return jobstorage.NewDB(makeDynamoDB(config.DynamoConfig))
}

func makeDynamoDB(dynamoConfig config.Dynamo) dynamolib.DynamoDBWrapper {
	dbSession := session.Must(session.NewSession())

	var dbConfig *aws.Config

	switch t := dynamoConfig.(type) {
	case config.ProdDynamo:
		dbConfig = aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region)

	case config.LocalDynamo:
		dbConfig = aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region).
			WithEndpoint(t.Host)

	default:
		panic("Unexpected dynamo config type")
	}

	db := dynamo.New(dbSession, dbConfig)
	return dynamolib.NewDynamoDBWrapper(db)
}

func makeModelRegistry(config Config) *registry.ModelRegistry {
	binExecutor := config.Executor
	if binExecutor == nil {
		binExecutor = executor.BinaryFileExecutor{}
	}

	loader, err := modelload.NewSpleeterLoader(
		config.SpleeterBinPath,
		config.ModelDirPath,
		binExecutor,
		config.ModelFileStore,
		config.RemoteModelURL,
	)

	if err != nil {
		panic(errors.Wrap(err, "Failed to create the model loader"))
	}

	return registry.NewModelRegistry(loader)
}

func makeSeparationGateway(
	config Config,
	modelRegistry *registry.ModelRegistry,
	workerPool pool.WorkerPool,
	jobStore jobentity.Store,
	uploadDir working_dir.WorkingDir,
	outputDir working_dir.WorkingDir,
) separationgateway.Gateway {
	usecase := separationusecase.NewUsecase(
		modelRegistry,
		workerPool,
		jobStore,
		config.Publisher,
		uploadDir,
		outputDir,
		config.JobTimeout,
	)

	return separationgateway.NewGateway(usecase)
}

func makeJobGateway(jobStore jobentity.Store, outputDir working_dir.WorkingDir) jobgateway.Gateway {
	usecase := jobusecase.NewUsecase(jobStore, outputDir)
	return jobgateway.NewGateway(usecase)
}

func makeCorsMiddleware(config Config) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	})
}
