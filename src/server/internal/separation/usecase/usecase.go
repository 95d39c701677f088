package separationusecase

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/api"
	jobentity "github.com/veedubyou/stem-split-be/src/server/internal/job/entity"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	separationerrors "github.com/veedubyou/stem-split-be/src/server/internal/separation/errors"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/pool"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/registry"
	"github.com/veedubyou/stem-split-be/src/shared/lib/errors/mark"
	"github.com/veedubyou/stem-split-be/src/shared/lib/rabbitmq"
	"github.com/veedubyou/stem-split-be/src/shared/lib/working_dir"
)

const CompletionEventType = "separation_completed"

type SeparateRequest struct {
	FileName string
	Contents []byte
	Model    string
	Format   string
}

type Usecase struct {
	registry   *registry.ModelRegistry
	workerPool pool.WorkerPool
	jobStore   jobentity.Store
	// nil publisher disables completion events
	publisher  rabbitmq.Publisher
	uploadDir  working_dir.WorkingDir
	outputDir  working_dir.WorkingDir
	jobTimeout time.Duration
}

func NewUsecase(
	registry *registry.ModelRegistry,
	workerPool pool.WorkerPool,
	jobStore jobentity.Store,
	publisher rabbitmq.Publisher,
	uploadDir working_dir.WorkingDir,
	outputDir working_dir.WorkingDir,
	jobTimeout time.Duration,
) Usecase {
	return Usecase{
		registry:   registry,
		workerPool: workerPool,
		jobStore:   jobStore,
		publisher:  publisher,
		uploadDir:  uploadDir,
		outputDir:  outputDir,
		jobTimeout: jobTimeout,
	}
}

// Separate runs one full separation job: validate, stage the upload
// under a job-scoped dir, run the model on a pool worker bounded by
// the job timeout, record the result, and clean up everything that
// shouldn't outlive the request. Bad input never reaches the model.
func (u Usecase) Separate(ctx context.Context, req SeparateRequest) (jobentity.Job, *api.Error) {
	splitType, format, apiErr := validateRequest(req)
	if apiErr != nil {
		return jobentity.Job{}, api.WrapError(apiErr, "Separation request failed validation")
	}

	jobID := uuid.New().String()

	logger := log.WithFields(log.Fields{
		"job_id": jobID,
		"model":  splitType,
		"format": format,
	})

	logger.Info("Staging uploaded file")
	inputPath, err := u.stageUpload(jobID, req)
	if err != nil {
		return jobentity.Job{}, api.CommitError(err,
			separationerrors.StorageFailedCode,
			"Failed to stage the uploaded file for processing")
	}

	// the staged upload never outlives the request
	defer u.removeJobDir(u.uploadDir.JobDir(jobID))

	outputJobDir := u.outputDir.JobDir(jobID)
	if err := os.MkdirAll(outputJobDir, os.ModePerm); err != nil {
		err = errors.Wrap(err, "Failed to create the job output dir")
		return jobentity.Job{}, api.CommitError(err,
			separationerrors.StorageFailedCode,
			"Failed to prepare the output location for processing")
	}

	jobCtx, cancel := context.WithTimeout(ctx, u.jobTimeout)
	defer cancel()

	logger.Info("Running separation")
	stemPaths, err := u.runOnWorker(jobCtx, splitType, format, inputPath, outputJobDir)
	if err != nil {
		u.removeJobDir(outputJobDir)
		return jobentity.Job{}, u.separationError(err)
	}

	job, err := u.recordJob(ctx, jobID, splitType, format, stemPaths)
	if err != nil {
		u.removeJobDir(outputJobDir)
		return jobentity.Job{}, u.separationError(err)
	}

	logger.WithField("total_stems", len(job.Stems)).Info("Separation completed")

	// long term async work, don't hold up the response for it
	go u.publishCompletionEvent(job)

	return job, nil
}

func (u Usecase) stageUpload(jobID string, req SeparateRequest) (string, error) {
	uploadJobDir := u.uploadDir.JobDir(jobID)
	if err := os.MkdirAll(uploadJobDir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "Failed to create the job upload dir")
	}

	inputPath := filepath.Join(uploadJobDir, sanitizeFileName(req.FileName))
	if err := os.WriteFile(inputPath, req.Contents, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "Failed to write the uploaded file to disk")
	}

	return inputPath, nil
}

type separationResult struct {
	stemPaths engine.StemFilePaths
	err       error
}

func (u Usecase) runOnWorker(ctx context.Context, splitType engine.SplitType, format engine.OutputFormat, inputPath string, outputJobDir string) (engine.StemFilePaths, error) {
	results := make(chan separationResult, 1)

	task := func() {
		stemPaths, err := u.separate(ctx, splitType, format, inputPath, outputJobDir)
		results <- separationResult{
			stemPaths: stemPaths,
			err:       err,
		}
	}

	if err := u.workerPool.Submit(task); err != nil {
		return nil, errors.Wrap(err, "Failed to hand the job to the worker pool")
	}

	select {
	case result := <-results:
		return result.stemPaths, result.err

	case <-ctx.Done():
		// the worker sees the same expired context and will stop on
		// its own - collect its leftovers without holding up the
		// response
		go func() {
			<-results
			u.removeJobDir(outputJobDir)
		}()

		return nil, mark.Wrap(ctx.Err(), timeoutMark, "Separation timed out")
	}
}

func (u Usecase) separate(ctx context.Context, splitType engine.SplitType, format engine.OutputFormat, inputPath string, outputJobDir string) (engine.StemFilePaths, error) {
	// the job may have sat in the queue past its deadline
	if ctx.Err() != nil {
		return nil, mark.Wrap(ctx.Err(), timeoutMark, "Job expired before a worker picked it up")
	}

	modelEngine, err := u.registry.Engine(splitType)
	if err != nil {
		return nil, mark.Wrap(err, modelLoadMark, "Failed to obtain the model for this configuration")
	}

	stemPaths, err := modelEngine.Separate(ctx, inputPath, outputJobDir, format)
	if err != nil {
		if ctx.Err() != nil {
			return nil, mark.Wrap(err, timeoutMark, "Separation was cut short by the job deadline")
		}

		return nil, mark.Wrap(err, separationMark, "The separation run failed")
	}

	return stemPaths, nil
}

func (u Usecase) recordJob(ctx context.Context, jobID string, splitType engine.SplitType, format engine.OutputFormat, stemPaths engine.StemFilePaths) (jobentity.Job, error) {
	stems := []jobentity.Stem{}

	for stemName, stemPath := range stemPaths {
		fileInfo, err := os.Stat(stemPath)
		if err != nil {
			return jobentity.Job{}, mark.Wrap(err, storageMark, "Failed to stat a produced stem file")
		}

		stems = append(stems, jobentity.Stem{
			Name:        stemName,
			FileName:    filepath.Base(stemPath),
			FilePath:    stemPath,
			Size:        fileInfo.Size(),
			DownloadURL: "/download/" + jobID + "/" + stemName,
		})
	}

	sort.Slice(stems, func(i int, j int) bool {
		return stems[i].Name < stems[j].Name
	})

	job := jobentity.Job{
		ID:        jobID,
		Model:     string(splitType),
		Format:    string(format),
		Stems:     stems,
		CreatedAt: time.Now().UTC(),
	}

	if err := u.jobStore.CreateJob(ctx, job); err != nil {
		return jobentity.Job{}, errors.Wrap(err, "Failed to save the job record")
	}

	return job, nil
}

type completionEvent struct {
	JobID      string   `json:"job_id"`
	Model      string   `json:"model"`
	Format     string   `json:"format"`
	StemNames  []string `json:"stem_names"`
	TotalStems int      `json:"total_stems"`
}

func (u Usecase) publishCompletionEvent(job jobentity.Job) {
	if u.publisher == nil {
		return
	}

	stemNames := []string{}
	for _, stem := range job.Stems {
		stemNames = append(stemNames, stem.Name)
	}

	jsonBytes, err := json.Marshal(completionEvent{
		JobID:      job.ID,
		Model:      job.Model,
		Format:     job.Format,
		StemNames:  stemNames,
		TotalStems: len(stemNames),
	})

	if err != nil {
		log.WithError(err).Error("Failed to marshal the completion event")
		return
	}

	err = u.publisher.Publish(amqp091.Publishing{
		Type: CompletionEventType,
		Body: jsonBytes,
	})

	if err != nil {
		log.WithError(err).
			WithField("job_id", job.ID).
			Error("Failed to publish the completion event")
	}
}

func (u Usecase) separationError(err error) *api.Error {
	switch {
	case errors.Is(err, pool.ErrQueueSaturated):
		return api.CommitError(err,
			separationerrors.ServerBusyCode,
			"The server is at capacity right now. Please retry shortly")

	case markers.Is(err, timeoutMark):
		return api.CommitError(err,
			separationerrors.SeparationTimeoutCode,
			"Separation did not finish within the allowed time")

	case markers.Is(err, modelLoadMark):
		return api.CommitError(err,
			separationerrors.ModelLoadFailedCode,
			"The model for this configuration failed to load")

	case markers.Is(err, separationMark):
		return api.CommitError(err,
			separationerrors.SeparationFailedCode,
			"Separation failed while processing the file")

	case markers.Is(err, storageMark):
		return api.CommitError(err,
			separationerrors.StorageFailedCode,
			"A storage error occurred while processing the file")

	default:
		return api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to separate the file")
	}
}

func (u Usecase) removeJobDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.WithError(err).
			WithField("dir", dir).
			Error("Failed to remove job dir")
	}
}
