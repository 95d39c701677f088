package spleeter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/stem-split-be/src/server/internal/executor"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
)

var _ engine.Engine = Engine{}

var paramMap = map[engine.SplitType]string{
	engine.TwoStemSplitType:  "spleeter:2stems-16khz",
	engine.FourStemSplitType: "spleeter:4stems-16khz",
	engine.FiveStemSplitType: "spleeter:5stems-16khz",
}

// Engine shells out to the spleeter binary for one split configuration.
// The pretrained weights live under modelDir and are resolved by
// spleeter through the MODEL_PATH env var.
type Engine struct {
	binPath   string
	modelDir  string
	splitType engine.SplitType
	executor  executor.Executor
}

func NewEngine(binPath string, modelDir string, splitType engine.SplitType, executor executor.Executor) (Engine, error) {
	if _, ok := paramMap[splitType]; !ok {
		return Engine{}, errors.Newf("No spleeter param exists for split type: %s", splitType)
	}

	absModelDir, err := filepath.Abs(modelDir)
	if err != nil {
		return Engine{}, errors.Wrap(err, "Cannot convert model dir to absolute format")
	}

	return Engine{
		binPath:   binPath,
		modelDir:  absModelDir,
		splitType: splitType,
		executor:  executor,
	}, nil
}

func (e Engine) Separate(ctx context.Context, sourcePath string, stemsOutputDir string, format engine.OutputFormat) (engine.StemFilePaths, error) {
	absSourcePath, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot convert source path to absolute format")
	}

	absStemsOutputDir, err := filepath.Abs(stemsOutputDir)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot convert destination path to absolute format")
	}

	// splitting is a lengthy process, if we want to halt now is the time
	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), "Context expired before separation could happen")
	}

	if err := e.runSpleeter(ctx, absSourcePath, absStemsOutputDir, format); err != nil {
		return nil, errors.Wrap(err, "Failed to execute spleeter")
	}

	stemPaths, err := e.collectStemFilePaths(absStemsOutputDir, format)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to collect produced stem files")
	}

	return stemPaths, nil
}

func (e Engine) runSpleeter(ctx context.Context, sourcePath string, destPath string, format engine.OutputFormat) error {
	logger := log.WithFields(log.Fields{
		"sourcePath": sourcePath,
		"destPath":   destPath,
		"splitType":  e.splitType,
	})

	args := []string{
		"separate",
		"-i", sourcePath,
		"-p", paramMap[e.splitType],
		"-o", destPath,
		"-c", string(format),
	}

	if format == engine.MP3OutputFormat {
		args = append(args, "-b", "320k")
	}

	args = append(args, "-f", "{instrument}"+format.Extension())

	logger.Info("Running spleeter command")
	cmd := e.executor.CommandContext(ctx, e.binPath, args...)
	cmd.SetDir(e.modelDir)
	cmd.SetEnv(append(os.Environ(), "MODEL_PATH="+e.modelDir))

	output, err := cmd.CombinedOutput()
	if err != nil {
		errMsg := fmt.Sprintf("Error occurred while running spleeter - output: %s", string(output))
		return errors.Wrap(err, errMsg)
	}

	logger.Debug(string(output))
	logger.Info("Finished spleeter command")

	return nil
}

// collectStemFilePaths gathers the produced stems and refuses to
// return a partial set - missing stems mean the run failed even if
// spleeter exited cleanly
func (e Engine) collectStemFilePaths(dir string, format engine.OutputFormat) (engine.StemFilePaths, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "Error reading output directory")
	}

	outputs := engine.StemFilePaths{}

	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}

		fileName := dirEntry.Name()
		if !strings.HasSuffix(fileName, format.Extension()) {
			continue
		}

		filePath, err := filepath.Abs(filepath.Join(dir, fileName))
		if err != nil {
			return nil, errors.Wrap(err, "Failed to convert file path to absolute format")
		}

		stemName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
		outputs[stemName] = filePath
	}

	for _, stemName := range e.splitType.StemNames() {
		if _, ok := outputs[stemName]; !ok {
			return nil, errors.Newf("Output is missing the %s stem", stemName)
		}
	}

	return outputs, nil
}
