package jobusecase

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/api"
	jobentity "github.com/veedubyou/stem-split-be/src/server/internal/job/entity"
	joberrors "github.com/veedubyou/stem-split-be/src/server/internal/job/errors"
	jobstorage "github.com/veedubyou/stem-split-be/src/server/internal/job/storage"
	"github.com/veedubyou/stem-split-be/src/shared/lib/working_dir"
)

type Usecase struct {
	db        jobentity.Store
	outputDir working_dir.WorkingDir
}

func NewUsecase(db jobentity.Store, outputDir working_dir.WorkingDir) Usecase {
	return Usecase{
		db:        db,
		outputDir: outputDir,
	}
}

func (u Usecase) GetJob(ctx context.Context, jobID string) (jobentity.Job, *api.Error) {
	job, err := u.db.GetJob(ctx, jobID)
	if err != nil {
		err = errors.Wrap(err, "Failed to get job from the job store")
		switch {
		case markers.Is(err, jobstorage.JobNotFoundMark):
			return jobentity.Job{}, api.CommitError(err,
				joberrors.JobNotFoundCode,
				"This job couldn't be found. It may have been cleaned up already")

		case markers.Is(err, jobstorage.JobUnmarshalMark):
			return jobentity.Job{}, api.CommitError(err,
				joberrors.BadJobDataCode,
				"The stored job data is malformed. Please contact the developer")

		case markers.Is(err, jobstorage.DefaultErrorMark):
			fallthrough
		default:
			return jobentity.Job{}, api.CommitError(err,
				api.DefaultErrorCode,
				"Unknown error: Failed to fetch the job")
		}
	}

	return job, nil
}

func (u Usecase) GetStem(ctx context.Context, jobID string, stemName string) (jobentity.Stem, *api.Error) {
	job, apiErr := u.GetJob(ctx, jobID)
	if apiErr != nil {
		return jobentity.Stem{}, api.WrapError(apiErr, "Failed to look up the job for this stem")
	}

	stem, ok := job.Stem(stemName)
	if !ok {
		err := errors.Newf("Job has no stem named %s", stemName)
		return jobentity.Stem{}, api.CommitError(err,
			joberrors.StemNotFoundCode,
			"This job has no stem by that name")
	}

	return stem, nil
}

// DeleteJob removes the job's staged output files first and only then
// its record - a half-deleted job must still be findable for a retry
func (u Usecase) DeleteJob(ctx context.Context, jobID string) *api.Error {
	_, apiErr := u.GetJob(ctx, jobID)
	if apiErr != nil {
		return api.WrapError(apiErr, "Failed to look up the job to clean up")
	}

	if err := os.RemoveAll(u.outputDir.JobDir(jobID)); err != nil {
		err = errors.Wrap(err, "Failed to remove the job output dir")
		return api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to clean up the job files")
	}

	if err := u.db.DeleteJob(ctx, jobID); err != nil {
		err = errors.Wrap(err, "Failed to delete the job record")
		return api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to clean up the job record")
	}

	return nil
}
