package review

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Context is the bundle handed to the completion step: the diff under
// review, the effective rules, and best-effort repository context.
type Context struct {
	Diff  string
	Extra string
}

// BranchContext is the subset of git operations the context builder needs.
// Failures here degrade the review instead of aborting it.
type BranchContext interface {
	Checkout(branch string) error
	RecentCommits(n int) (string, error)
}

const recentCommitCount = 5

// BuildExtraContext assembles the free-text context string sent alongside
// the diff: change statistics plus recent commits on the source branch.
// Gathering failures are recorded inline and never returned as errors.
func BuildExtraContext(repo BranchContext, sourceBranch, diff string) string {
	var b strings.Builder

	if stats := DiffStats(diff); stats != "" {
		b.WriteString(stats)
		b.WriteString("\n\n")
	}

	if repo != nil && sourceBranch != "" {
		if err := repo.Checkout(sourceBranch); err != nil {
			fmt.Fprintf(&b, "Could not checkout branch %s: %v\n", sourceBranch, err)
		} else if commits, err := repo.RecentCommits(recentCommitCount); err != nil {
			fmt.Fprintf(&b, "Could not read commits on %s: %v\n", sourceBranch, err)
		} else {
			fmt.Fprintf(&b, "Recent commits on %s:\n%s\n\n", sourceBranch, commits)
		}
	}

	return b.String()
}

// DiffStats summarizes a unified diff as a one-line change count. Returns
// "" when the diff cannot be parsed; stats are advisory context only.
func DiffStats(diff string) string {
	files, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil || len(files) == 0 {
		return ""
	}
	var added, deleted int64
	for _, f := range files {
		for _, frag := range f.TextFragments {
			added += frag.LinesAdded
			deleted += frag.LinesDeleted
		}
	}
	return fmt.Sprintf("Change summary: %d files changed, +%d/-%d lines", len(files), added, deleted)
}
