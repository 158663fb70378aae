package git

import (
	"context"
	"strconv"
	"strings"
)

const (
	shortHashLength = 7
	logFormat       = "--pretty=format:%H %s"
)

type Commit struct {
	Hash    string
	Message string
}

// ShortHash returns the abbreviated hash used when displaying commits.
func (c Commit) ShortHash() string {
	if len(c.Hash) <= shortHashLength {
		return c.Hash
	}
	return c.Hash[:shortHashLength]
}

// Commits lists the newest-first history of the current branch. A positive
// limit bounds the result to that many of the most recent commits. A branch
// without commits yields an empty list.
func (r *Repository) Commits(ctx context.Context, limit int) ([]Commit, error) {
	hasHead, err := r.hasHead(ctx)
	if err != nil {
		return nil, err
	}
	if !hasHead {
		return []Commit{}, nil
	}

	args := []string{"log", logFormat}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}

	out, err := r.runner.Run(ctx, r.Path, args...)
	if err != nil {
		return nil, err
	}

	return ParseLog(out), nil
}

// ParseLog turns "<hash> <subject>" lines into commits. Blank lines are skipped.
func ParseLog(output string) []Commit {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	commits := make([]Commit, 0, len(lines))

	for _, line := range lines {
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		commits = append(commits, Commit{
			Hash:    parts[0],
			Message: strings.Join(parts[1:], " "),
		})
	}

	return commits
}
