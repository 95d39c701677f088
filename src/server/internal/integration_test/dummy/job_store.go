package dummy

import (
	"context"
	"sync"

	jobentity "github.com/veedubyou/stem-split-be/src/server/internal/job/entity"
	jobstorage "github.com/veedubyou/stem-split-be/src/server/internal/job/storage"
	"github.com/veedubyou/stem-split-be/src/shared/lib/errors/mark"
)

var _ jobentity.Store = &JobStore{}

func NewDummyJobStore() *JobStore {
	return &JobStore{
		Unavailable: false,
		State:       make(map[string]jobentity.Job),
	}
}

type JobStore struct {
	Unavailable bool
	State       map[string]jobentity.Job
	mutex       sync.RWMutex
}

func (t *JobStore) CreateJob(_ context.Context, job jobentity.Job) error {
	if t.Unavailable {
		return NetworkFailure
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.State[job.ID] = job
	return nil
}

func (t *JobStore) GetJob(_ context.Context, jobID string) (jobentity.Job, error) {
	if t.Unavailable {
		return jobentity.Job{}, NetworkFailure
	}

	t.mutex.RLock()
	defer t.mutex.RUnlock()

	job, ok := t.State[jobID]
	if !ok {
		return jobentity.Job{}, mark.Message(jobstorage.JobNotFoundMark, "No job found for this ID")
	}

	return job, nil
}

func (t *JobStore) DeleteJob(_ context.Context, jobID string) error {
	if t.Unavailable {
		return NetworkFailure
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.State[jobID]; !ok {
		return mark.Message(jobstorage.JobNotFoundMark, "No job found for this ID")
	}

	delete(t.State, jobID)
	return nil
}
