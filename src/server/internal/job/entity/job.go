package jobentity

import (
	"context"
	"time"
)

// Stem is one separated audio component of a finished job
type Stem struct {
	Name        string `json:"name"`
	FileName    string `json:"filename"`
	FilePath    string `json:"path"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

// Job is the persisted record of one completed separation. The audio
// itself stays on disk under the outputs dir - the record only points
// at it so that download and cleanup can find it later.
type Job struct {
	ID        string    `json:"job_id"`
	Model     string    `json:"model"`
	Format    string    `json:"format"`
	Stems     []Stem    `json:"stems"`
	CreatedAt time.Time `json:"created_at"`
}

func (j Job) Stem(stemName string) (Stem, bool) {
	for _, stem := range j.Stems {
		if stem.Name == stemName {
			return stem, true
		}
	}

	return Stem{}, false
}

type Store interface {
	CreateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, jobID string) (Job, error)
	DeleteJob(ctx context.Context, jobID string) error
}
