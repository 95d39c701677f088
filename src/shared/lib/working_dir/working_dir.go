package working_dir

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// WorkingDir is a root directory that per-job subdirectories get
// scoped under. The root is created eagerly so that a bad path
// surfaces at construction rather than on the first request.
type WorkingDir struct {
	root string
}

func NewWorkingDir(root string) (WorkingDir, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return WorkingDir{}, errors.Wrap(err, "Failed to generate absolute path for working directory")
	}

	if err := os.MkdirAll(absRoot, os.ModePerm); err != nil {
		return WorkingDir{}, errors.Wrap(err, "Failed to create working directory")
	}

	return WorkingDir{
		root: absRoot,
	}, nil
}

func (w WorkingDir) Root() string {
	return w.root
}

// JobDir returns the path scoped to one job ID. The directory is not
// created here - callers create it when they stage files.
func (w WorkingDir) JobDir(jobID string) string {
	return filepath.Join(w.root, jobID)
}
