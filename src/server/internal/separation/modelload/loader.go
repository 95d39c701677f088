package modelload

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/stem-split-be/src/server/internal/executor"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine/spleeter"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/registry"
	cloudstorage "github.com/veedubyou/stem-split-be/src/shared/cloud_storage/entity"
)

var _ registry.Loader = SpleeterLoader{}

// SpleeterLoader constructs Model Handles for the spleeter binary.
// Construction is the expensive step: when the pretrained weights for
// a configuration aren't in the local model dir yet, they get synced
// down from the remote model store first. An empty remoteModelURL
// means there is nowhere to sync from and missing weights are fatal.
type SpleeterLoader struct {
	binPath        string
	modelDir       string
	executor       executor.Executor
	remoteStore    cloudstorage.FileStore
	remoteModelURL string
}

func NewSpleeterLoader(
	binPath string,
	modelDir string,
	executor executor.Executor,
	remoteStore cloudstorage.FileStore,
	remoteModelURL string,
) (SpleeterLoader, error) {
	absModelDir, err := filepath.Abs(modelDir)
	if err != nil {
		return SpleeterLoader{}, errors.Wrap(err, "Cannot convert model dir to absolute format")
	}

	if err := os.MkdirAll(absModelDir, os.ModePerm); err != nil {
		return SpleeterLoader{}, errors.Wrap(err, "Failed to create model dir")
	}

	return SpleeterLoader{
		binPath:        binPath,
		modelDir:       absModelDir,
		executor:       executor,
		remoteStore:    remoteStore,
		remoteModelURL: strings.TrimSuffix(remoteModelURL, "/"),
	}, nil
}

func (s SpleeterLoader) Load(ctx context.Context, splitType engine.SplitType) (engine.Engine, error) {
	logger := log.WithFields(log.Fields{
		"splitType": splitType,
		"modelDir":  s.modelDir,
	})

	configModelDir := filepath.Join(s.modelDir, string(splitType))

	present, err := modelPresent(configModelDir)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to inspect the local model dir")
	}

	if !present {
		logger.Info("Pretrained model is not present locally, syncing from remote store")
		if err := s.syncModel(ctx, splitType, configModelDir); err != nil {
			return nil, errors.Wrap(err, "Failed to sync pretrained model from remote store")
		}
	}

	logger.Info("Constructing model handle")
	return spleeter.NewEngine(s.binPath, s.modelDir, splitType, s.executor)
}

func (s SpleeterLoader) syncModel(ctx context.Context, splitType engine.SplitType, configModelDir string) error {
	if s.remoteModelURL == "" {
		return errors.New("Model files are missing and no remote model store is configured")
	}

	remoteDirURL := fmt.Sprintf("%s/%s", s.remoteModelURL, splitType)

	remoteFileURLs, err := s.remoteStore.ListDir(ctx, remoteDirURL)
	if err != nil {
		return errors.Wrap(err, "Failed to list the remote model dir")
	}

	if len(remoteFileURLs) == 0 {
		return errors.Newf("No pretrained model files exist at %s", remoteDirURL)
	}

	if err := os.MkdirAll(configModelDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "Failed to create the local model dir")
	}

	for _, remoteFileURL := range remoteFileURLs {
		contents, err := s.remoteStore.GetFile(ctx, remoteFileURL)
		if err != nil {
			return errors.Wrap(err, "Failed to fetch a remote model file")
		}

		localPath := filepath.Join(configModelDir, path.Base(remoteFileURL))
		if err := os.WriteFile(localPath, contents, os.ModePerm); err != nil {
			return errors.Wrap(err, "Failed to write model file to disk")
		}
	}

	return nil
}

func modelPresent(configModelDir string) (bool, error) {
	dirEntries, err := os.ReadDir(configModelDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, err
	}

	return len(dirEntries) > 0, nil
}
