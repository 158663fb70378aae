package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

const gitExecutable = "git"

// Runner executes git subcommands inside an explicit working directory.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// RepositoryAccessError reports an invalid repository path or a failed git invocation.
type RepositoryAccessError struct {
	Path   string
	Args   []string
	Stderr string
	Err    error
}

func (e *RepositoryAccessError) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("cannot access repository %s: %v", e.Path, e.Err)
	}

	msg := fmt.Sprintf("git %s failed in %s: %v", strings.Join(e.Args, " "), e.Path, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *RepositoryAccessError) Unwrap() error {
	return e.Err
}

type ExecRunner struct {
	logger *zap.Logger
}

func NewExecRunner(logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, gitExecutable, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running git", zap.String("dir", dir), zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		accessErr := &RepositoryAccessError{
			Path:   dir,
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
		r.logger.Debug("git failed", zap.Strings("args", args), zap.Error(accessErr))
		return "", accessErr
	}

	return stdout.String(), nil
}
