package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// unresolvedRevisionExitCode is what git rev-parse --verify --quiet exits with
// when the revision does not exist.
const unresolvedRevisionExitCode = 1

// exitCoder is satisfied by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

// Repository scopes every git invocation to a single work tree. The process
// working directory is never changed.
type Repository struct {
	Path   string
	runner Runner
	logger *zap.Logger
}

func NewRepository(path string, runner Runner, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		Path:   path,
		runner: runner,
		logger: logger,
	}
}

// Open validates that path lies inside a non-bare git work tree and returns a
// Repository rooted at the top of that work tree.
func Open(path string, runner Runner, logger *zap.Logger) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &RepositoryAccessError{Path: path, Err: err}
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &RepositoryAccessError{Path: absPath, Err: err}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, &RepositoryAccessError{Path: absPath, Err: err}
	}

	return NewRepository(worktree.Filesystem.Root(), runner, logger), nil
}

// CommitCount returns the number of commits reachable from HEAD, or zero when
// the current branch has no commits yet.
func (r *Repository) CommitCount(ctx context.Context) (int, error) {
	hasHead, err := r.hasHead(ctx)
	if err != nil || !hasHead {
		return 0, err
	}

	out, err := r.runner.Run(ctx, r.Path, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("failed to parse commit count %q: %w", strings.TrimSpace(out), err)
	}
	return count, nil
}

// hasHead reports whether HEAD resolves. rev-parse --verify --quiet exits 1
// for an unborn branch; any other failure is returned to the caller.
func (r *Repository) hasHead(ctx context.Context) (bool, error) {
	_, err := r.runner.Run(ctx, r.Path, "rev-parse", "--verify", "--quiet", "HEAD")
	if err == nil {
		return true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	var exitErr exitCoder
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != unresolvedRevisionExitCode {
		var accessErr *RepositoryAccessError
		if errors.As(err, &accessErr) {
			return false, err
		}
		return false, &RepositoryAccessError{Path: r.Path, Args: []string{"rev-parse", "--verify", "--quiet", "HEAD"}, Err: err}
	}

	r.logger.Debug("HEAD does not resolve, treating history as empty", zap.String("path", r.Path))
	return false, nil
}
