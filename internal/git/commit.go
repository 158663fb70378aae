package git

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type SquashMode string

const (
	SquashNone          SquashMode = "none"
	SquashAmend         SquashMode = "amend"
	SquashResetAndAmend SquashMode = "reset-and-amend"
)

type SquashResult struct {
	Requested int
	Total     int
	Squashed  int
	Mode      SquashMode
	ResetRef  string
}

// PlanSquash decides how many commits can be collapsed and which git
// operations that takes.
func PlanSquash(requested, total int) SquashResult {
	squashed := min(max(requested, 0), max(total, 0))

	plan := SquashResult{
		Requested: requested,
		Total:     total,
		Squashed:  squashed,
	}

	switch {
	case squashed > 1:
		plan.Mode = SquashResetAndAmend
		plan.ResetRef = fmt.Sprintf("HEAD~%d", squashed-1)
	case squashed == 1:
		plan.Mode = SquashAmend
	default:
		plan.Mode = SquashNone
	}

	return plan
}

// Squash collapses the most recent requested commits into a single commit
// carrying message. It rewrites history and creates no backup ref.
func (r *Repository) Squash(ctx context.Context, message string, requested int) (SquashResult, error) {
	if strings.TrimSpace(message) == "" {
		return SquashResult{}, fmt.Errorf("commit message cannot be empty")
	}

	total, err := r.CommitCount(ctx)
	if err != nil {
		return SquashResult{}, fmt.Errorf("failed to count commits: %w", err)
	}

	plan := PlanSquash(requested, total)
	r.logger.Debug("squash planned",
		zap.Int("requested", plan.Requested),
		zap.Int("total", plan.Total),
		zap.String("mode", string(plan.Mode)),
	)

	if plan.Mode == SquashNone {
		return plan, nil
	}

	if plan.Mode == SquashResetAndAmend {
		if _, err := r.runner.Run(ctx, r.Path, "reset", "--soft", plan.ResetRef); err != nil {
			return plan, fmt.Errorf("failed to reset to %s: %w", plan.ResetRef, err)
		}
	}

	if err := r.Amend(ctx, message); err != nil {
		if plan.ResetRef != "" {
			return plan, fmt.Errorf("branch was reset to %s but the amend failed, recover with git reflog: %w", plan.ResetRef, err)
		}
		return plan, err
	}

	return plan, nil
}

// Amend replaces the message of the current commit.
func (r *Repository) Amend(ctx context.Context, message string) error {
	if _, err := r.runner.Run(ctx, r.Path, "commit", "--amend", "-m", message); err != nil {
		return fmt.Errorf("failed to amend commit: %w", err)
	}
	return nil
}
