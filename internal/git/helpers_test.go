package git_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"commit-analyzer/internal/git"
)

// recordingRunner answers git invocations from a canned table and records
// every call it receives.
type recordingRunner struct {
	responses map[string]string
	failures  map[string]error
	calls     [][]string
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{
		responses: map[string]string{},
		failures:  map[string]error{},
	}
}

func (r *recordingRunner) Run(_ context.Context, _ string, args ...string) (string, error) {
	r.calls = append(r.calls, append([]string{}, args...))
	key := strings.Join(args, " ")
	if err, ok := r.failures[key]; ok {
		return "", err
	}
	if out, ok := r.responses[key]; ok {
		return out, nil
	}
	return "", errors.New("unexpected git invocation: " + key)
}

func (r *recordingRunner) called(args ...string) bool {
	want := strings.Join(args, " ")
	for _, call := range r.calls {
		if strings.Join(call, " ") == want {
			return true
		}
	}
	return false
}

// withHead makes rev-parse HEAD succeed and rev-list report total commits.
func (r *recordingRunner) withHead(total string) *recordingRunner {
	r.responses["rev-parse --verify --quiet HEAD"] = "0123456789abcdef\n"
	r.responses["rev-list --count HEAD"] = total + "\n"
	return r
}

// exitStatus mimics *exec.ExitError for canned runner failures.
type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitStatus) ExitCode() int { return int(e) }

func (r *recordingRunner) withoutHead() *recordingRunner {
	return r.withHeadFailure(exitStatus(1), "")
}

func (r *recordingRunner) withHeadFailure(err error, stderr string) *recordingRunner {
	args := []string{"rev-parse", "--verify", "--quiet", "HEAD"}
	r.failures[strings.Join(args, " ")] = &git.RepositoryAccessError{Path: "/repo", Args: args, Stderr: stderr, Err: err}
	return r
}

type testRepo struct {
	Dir string
	t   *testing.T
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	tr := &testRepo{Dir: t.TempDir(), t: t}
	tr.git("init")
	tr.git("config", "user.email", "test@test.local")
	tr.git("config", "user.name", "Test User")
	tr.git("config", "commit.gpgsign", "false")
	return tr
}

func (tr *testRepo) git(args ...string) string {
	tr.t.Helper()
	cmd := exec.CommandContext(tr.t.Context(), "git", args...)
	cmd.Dir = tr.Dir
	out, err := cmd.CombinedOutput()
	require.NoError(tr.t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

func (tr *testRepo) commit(messages ...string) {
	tr.t.Helper()
	for _, message := range messages {
		path := filepath.Join(tr.Dir, "file.txt")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		require.NoError(tr.t, err)
		_, err = f.WriteString(message + "\n")
		require.NoError(tr.t, err)
		require.NoError(tr.t, f.Close())

		tr.git("add", ".")
		tr.git("commit", "-m", message)
	}
}

func mkdir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func canonical(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}
