package engine

import (
	"context"
)

// StemFilePaths maps a stem name to the path of its separated audio file
type StemFilePaths = map[string]string

// Engine is a loaded Model Handle for one split configuration.
// Implementations must be safe for concurrent use - an Engine is
// constructed once per process and shared by all requests that
// target its configuration.
type Engine interface {
	Separate(ctx context.Context, sourcePath string, stemsOutputDir string, format OutputFormat) (StemFilePaths, error)
}
