package prompt

import (
	"fmt"
	"strings"

	"commit-analyzer/internal/git"
)

const Instruction = "Summarize the following git commits and suggest a single commit message that encompasses all changes:"

// FormatCommit renders a commit as "<short hash>: <message>".
func FormatCommit(commit git.Commit) string {
	return fmt.Sprintf("%s: %s", commit.ShortHash(), commit.Message)
}

func FormatCommits(commits []git.Commit) string {
	lines := make([]string, 0, len(commits))
	for _, commit := range commits {
		lines = append(lines, FormatCommit(commit))
	}
	return strings.Join(lines, "\n")
}

// BuildSummaryPrompt asks for a summary and a single encompassing commit
// message, listing commits in the order given.
func BuildSummaryPrompt(commits []git.Commit) string {
	return Instruction + "\n\n" + FormatCommits(commits)
}
