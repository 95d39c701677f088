package executor

import (
	"context"
	"os/exec"
)

var _ Executor = BinaryFileExecutor{}

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . Executor
type Executor interface {
	// the context bounds the lifetime of the spawned process -
	// when it expires the process is killed, not orphaned
	CommandContext(ctx context.Context, name string, arg ...string) Command
}

//counterfeiter:generate . Command
type Command interface {
	SetDir(dir string)
	SetEnv(env []string)
	CombinedOutput() ([]byte, error)
}

// the only reason this is here is to create an interface for testing
type BinaryFileExecutor struct{}

func (b BinaryFileExecutor) CommandContext(ctx context.Context, name string, arg ...string) Command {
	return &binaryFileCommand{
		cmd: exec.CommandContext(ctx, name, arg...),
	}
}

type binaryFileCommand struct {
	cmd *exec.Cmd
}

func (b *binaryFileCommand) SetDir(dir string) {
	b.cmd.Dir = dir
}

func (b *binaryFileCommand) SetEnv(env []string) {
	b.cmd.Env = env
}

func (b *binaryFileCommand) CombinedOutput() ([]byte, error) {
	return b.cmd.CombinedOutput()
}
