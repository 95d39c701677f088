package dummy

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/veedubyou/stem-split-be/src/server/internal/executor"
)

var _ executor.Executor = &SpleeterExecutor{}

func NewDummySpleeterExecutor() *SpleeterExecutor {
	return &SpleeterExecutor{
		Unavailable: false,
	}
}

// SpleeterExecutor stands in for the real spleeter binary. It parses
// the same CLI arguments and fabricates stem files derived from the
// source contents. Delay simulates a slow separation run that respects
// context cancellation, the way a killed child process would.
type SpleeterExecutor struct {
	Unavailable bool
	Delay       time.Duration
}

type SpleeterCommand struct {
	Unavailable bool
	Delay       time.Duration
	Ctx         context.Context
	Args        []string
}

func (s *SpleeterExecutor) CommandContext(ctx context.Context, _ string, arg ...string) executor.Command {
	return &SpleeterCommand{
		Unavailable: s.Unavailable,
		Delay:       s.Delay,
		Ctx:         ctx,
		Args:        arg,
	}
}

func getOptionValue(args []string, key string) (string, error) {
	for i, arg := range args {
		if arg == key {
			return args[i+1], nil
		}
	}

	return "", UnexpectedInput
}

func (s *SpleeterCommand) SetDir(_ string) {}

func (s *SpleeterCommand) SetEnv(_ []string) {}

func (s *SpleeterCommand) CombinedOutput() ([]byte, error) {
	if s.Args[0] != "separate" {
		return nil, UnexpectedInput
	}

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-s.Ctx.Done():
			return []byte("Killed"), s.Ctx.Err()
		}
	}

	sourcePath, err := getOptionValue(s.Args, "-i")
	if err != nil {
		return nil, err
	}

	splitParam, err := getOptionValue(s.Args, "-p")
	if err != nil {
		return nil, err
	}

	destinationDir, err := getOptionValue(s.Args, "-o")
	if err != nil {
		return nil, err
	}

	codec, err := getOptionValue(s.Args, "-c")
	if err != nil {
		return nil, err
	}

	if s.Unavailable {
		return nil, NetworkFailure
	}

	contents, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, err
	}

	stems := []string{}

	switch splitParam {
	case "spleeter:2stems-16khz":
		stems = append(stems, "vocals", "accompaniment")
	case "spleeter:4stems-16khz":
		stems = append(stems, "vocals", "other", "bass", "drums")
	case "spleeter:5stems-16khz":
		stems = append(stems, "vocals", "other", "piano", "bass", "drums")
	default:
		return nil, UnexpectedInput
	}

	for _, stem := range stems {
		stemPath := filepath.Join(destinationDir, stem+"."+codec)
		stemContents := []byte(string(contents) + "-" + stem)
		err := os.WriteFile(stemPath, stemContents, os.ModePerm)
		if err != nil {
			return nil, err
		}
	}

	return []byte("Success"), nil
}
