package jobstorage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/guregu/dynamo"
	jobentity "github.com/veedubyou/stem-split-be/src/server/internal/job/entity"
	dynamolib "github.com/veedubyou/stem-split-be/src/shared/lib/dynamo"
	"github.com/veedubyou/stem-split-be/src/shared/lib/errors/mark"
)

const (
	JobsTable = "SeparationJobs"

	idKey          = "id"
	modelField     = "model"
	formatField    = "format"
	stemsField     = "stems"
	createdAtField = "created_at"
)

var _ jobentity.Store = DB{}

type DB struct {
	dynamoDB dynamolib.DynamoDBWrapper
}

func NewDB(dynamoDB dynamolib.DynamoDBWrapper) DB {
	return DB{
		dynamoDB: dynamoDB,
	}
}

type dbStem struct {
	Name        string `dynamo:"name"`
	FileName    string `dynamo:"filename"`
	FilePath    string `dynamo:"path"`
	Size        int64  `dynamo:"size"`
	DownloadURL string `dynamo:"download_url"`
}

var _ dynamo.ItemUnmarshaler = &dbJob{}

type dbJob struct {
	ID        string   `dynamo:"id"`
	Model     string   `dynamo:"model"`
	Format    string   `dynamo:"format"`
	Stems     []dbStem `dynamo:"stems"`
	CreatedAt string   `dynamo:"created_at"`
}

func (d *dbJob) UnmarshalDynamoItem(dynamoItem map[string]*dynamodb.AttributeValue) error {
	if err := dynamolib.ValidateStringField(dynamoItem, idKey); err != nil {
		return mark.Wrap(err, JobUnmarshalMark, "Failed to validate ID field")
	}

	if err := dynamolib.ValidateStringField(dynamoItem, modelField); err != nil {
		return mark.Wrap(err, JobUnmarshalMark, "Failed to validate model field")
	}

	if err := dynamolib.ValidateStringField(dynamoItem, formatField); err != nil {
		return mark.Wrap(err, JobUnmarshalMark, "Failed to validate format field")
	}

	if err := dynamolib.ValidateStringField(dynamoItem, createdAtField); err != nil {
		return mark.Wrap(err, JobUnmarshalMark, "Failed to validate created_at field")
	}

	// plainJob drops the UnmarshalDynamoItem method so the struct tag
	// unmarshal below doesn't recurse back into this one
	type plainJob dbJob
	plain := plainJob{}
	if err := dynamo.UnmarshalItem(dynamoItem, &plain); err != nil {
		return mark.Wrap(err, JobUnmarshalMark, "Failed to unmarshal dynamo item")
	}

	*d = dbJob(plain)

	return nil
}

func (d DB) CreateJob(ctx context.Context, job jobentity.Job) error {
	if job.ID == "" {
		err := errors.New("Job ID is empty")
		return mark.Wrap(err, DefaultErrorMark, "No ID provided to create job")
	}

	stems := []map[string]any{}
	for _, stem := range job.Stems {
		stems = append(stems, map[string]any{
			"name":         stem.Name,
			"filename":     stem.FileName,
			"path":         stem.FilePath,
			"size":         stem.Size,
			"download_url": stem.DownloadURL,
		})
	}

	err := d.dynamoDB.Table(JobsTable).
		Put(map[string]any{
			idKey:          job.ID,
			modelField:     job.Model,
			formatField:    job.Format,
			stemsField:     stems,
			createdAtField: job.CreatedAt.UTC().Format(time.RFC3339),
		}).
		RunWithContext(ctx)

	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to put job into DB")
	}

	return nil
}

func (d DB) GetJob(ctx context.Context, jobID string) (jobentity.Job, error) {
	if jobID == "" {
		err := errors.New("Job ID is empty")
		return jobentity.Job{}, mark.Wrap(err, JobNotFoundMark, "No ID provided to fetch job")
	}

	value := dbJob{}
	err := d.dynamoDB.Table(JobsTable).
		Get(idKey, jobID).
		OneWithContext(ctx, &value)

	if err != nil {
		switch {
		case markers.Is(err, JobUnmarshalMark):
			return jobentity.Job{}, err
		case errors.Is(err, dynamo.ErrNotFound):
			return jobentity.Job{}, mark.Wrap(err, JobNotFoundMark, "Job for this ID couldn't be found")
		default:
			return jobentity.Job{}, mark.Wrap(err, DefaultErrorMark, "Failed to fetch job due to unknown data store error")
		}
	}

	job, err := value.toEntity()
	if err != nil {
		return jobentity.Job{}, mark.Wrap(err, JobUnmarshalMark, "Failed to unmarshal job into its entity form")
	}

	return job, nil
}

func (d DB) DeleteJob(ctx context.Context, jobID string) error {
	if jobID == "" {
		err := errors.New("Job ID is empty")
		return mark.Wrap(err, JobNotFoundMark, "No ID provided to delete job")
	}

	err := d.dynamoDB.Table(JobsTable).
		Delete(idKey, jobID).
		RunWithContext(ctx)

	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to delete job from DB")
	}

	return nil
}

func (d dbJob) toEntity() (jobentity.Job, error) {
	createdAt, err := time.Parse(time.RFC3339, d.CreatedAt)
	if err != nil {
		return jobentity.Job{}, errors.Wrap(err, "Failed to parse the job creation timestamp")
	}

	stems := []jobentity.Stem{}
	for _, stem := range d.Stems {
		stems = append(stems, jobentity.Stem{
			Name:        stem.Name,
			FileName:    stem.FileName,
			FilePath:    stem.FilePath,
			Size:        stem.Size,
			DownloadURL: stem.DownloadURL,
		})
	}

	return jobentity.Job{
		ID:        d.ID,
		Model:     d.Model,
		Format:    d.Format,
		Stems:     stems,
		CreatedAt: createdAt,
	}, nil
}
