// Package analyzer runs the list, summarize, confirm and squash pipeline.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"commit-analyzer/internal/git"
	"commit-analyzer/internal/prompt"
	"commit-analyzer/internal/provider"
	"commit-analyzer/internal/ui"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

type CommitLister interface {
	Commits(ctx context.Context, limit int) ([]git.Commit, error)
}

type SummaryGenerator interface {
	Summarize(ctx context.Context, commits []git.Commit) (string, error)
}

type Squasher interface {
	Squash(ctx context.Context, message string, requested int) (git.SquashResult, error)
}

type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Editor lets the operator revise the generated message before confirming.
type Editor func(message string) (string, error)

type Outcome string

const (
	OutcomeNoCommits       Outcome = "no-commits"
	OutcomeCancelled       Outcome = "cancelled"
	OutcomeNothingToSquash Outcome = "nothing-to-squash"
	OutcomeSquashed        Outcome = "squashed"
)

type Options struct {
	// NumCommits bounds the analysis to the most recent commits; zero means all.
	NumCommits int
}

type Analyzer struct {
	Lister     CommitLister
	Summarizer SummaryGenerator
	Squasher   Squasher
	Confirmer  Confirmer
	Editor     Editor
	Out        io.Writer
	// Progress receives the spinner while the provider is working; nil disables it.
	Progress io.Writer
	Logger   *zap.Logger
}

func (a *Analyzer) Run(ctx context.Context, opts Options) (Outcome, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	heading := color.New(color.Bold).SprintFunc()
	hash := color.New(color.FgYellow).SprintFunc()

	commits, err := a.Lister.Commits(ctx, opts.NumCommits)
	if err != nil {
		return "", fmt.Errorf("failed to list commits: %w", err)
	}
	logger.Debug("commits listed", zap.Int("count", len(commits)), zap.Int("limit", opts.NumCommits))

	if len(commits) == 0 {
		fmt.Fprintln(a.Out, "No commits found.")
		return OutcomeNoCommits, nil
	}

	fmt.Fprintln(a.Out, heading("Commit log messages:"))
	for _, commit := range commits {
		fmt.Fprintf(a.Out, "%s: %s\n", hash(commit.ShortHash()), commit.Message)
	}
	fmt.Fprintln(a.Out)

	summary, err := a.summarize(ctx, commits)
	if err != nil {
		return "", err
	}

	fmt.Fprintln(a.Out, heading("Commit summary:"))
	fmt.Fprintln(a.Out, summary)
	fmt.Fprintln(a.Out)

	if a.Editor != nil {
		edited, err := a.Editor(summary)
		if errors.Is(err, ui.ErrEditCancelled) {
			fmt.Fprintln(a.Out, "Operation cancelled.")
			return OutcomeCancelled, nil
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(edited) == "" {
			return "", fmt.Errorf("commit message cannot be empty")
		}
		if edited != summary {
			summary = edited
			fmt.Fprintln(a.Out, heading("Edited commit message:"))
			fmt.Fprintln(a.Out, summary)
			fmt.Fprintln(a.Out)
		}
	}

	confirmed, err := a.Confirmer.Confirm(ui.SquashQuestion)
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !confirmed {
		fmt.Fprintln(a.Out, "Operation cancelled.")
		return OutcomeCancelled, nil
	}

	result, err := a.Squasher.Squash(ctx, summary, len(commits))
	if err != nil {
		return "", fmt.Errorf("failed to squash commits: %w", err)
	}
	logger.Info("squash finished",
		zap.String("mode", string(result.Mode)),
		zap.Int("squashed", result.Squashed),
		zap.Int("total", result.Total),
	)

	if result.Mode == git.SquashNone {
		fmt.Fprintln(a.Out, "No commits to squash.")
		return OutcomeNothingToSquash, nil
	}

	fmt.Fprintln(a.Out, "Commits have been squashed.")
	return OutcomeSquashed, nil
}

func (a *Analyzer) summarize(ctx context.Context, commits []git.Commit) (string, error) {
	var summary string
	generate := func() error {
		var err error
		summary, err = a.Summarizer.Summarize(ctx, commits)
		return err
	}

	var err error
	if a.Progress != nil {
		err = ui.ShowSpinner(a.Progress, "Summarizing commits...", generate)
	} else {
		err = generate()
	}
	if err != nil {
		return "", fmt.Errorf("failed to summarize commits: %w", err)
	}
	return summary, nil
}

// Summarizer turns a commit list into a single commit message using a provider.
type Summarizer struct {
	Provider provider.Provider
	Model    string
}

func (s *Summarizer) Summarize(ctx context.Context, commits []git.Commit) (string, error) {
	reply, err := s.Provider.Complete(ctx, s.Model, prompt.BuildSummaryPrompt(commits))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
