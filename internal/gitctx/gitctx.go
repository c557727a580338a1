// Package gitctx gathers repository context for a review by shelling out
// to git against a local working copy of the project under review.
//
// Checkout mutates the working copy, so concurrent reviews against the
// same copy must be serialized by the deployment.
package gitctx

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Repo wraps git operations against one working copy.
type Repo struct {
	path string
}

// Open validates that path is a git working copy and returns a Repo.
func Open(path string) (*Repo, error) {
	r := &Repo{path: path}
	if _, err := r.git("rev-parse", "--show-toplevel"); err != nil {
		return nil, fmt.Errorf("not a git repository at %s: %w", path, err)
	}
	return r, nil
}

// Checkout switches the working copy to the named branch.
func (r *Repo) Checkout(branch string) error {
	if _, err := r.git("checkout", branch); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	return nil
}

// RecentCommits returns the last n commits as one-line entries.
func (r *Repo) RecentCommits(n int) (string, error) {
	out, err := r.git("log", "-"+strconv.Itoa(n), "--oneline")
	if err != nil {
		return "", fmt.Errorf("git log: %w", err)
	}
	return out, nil
}

// FileHistory returns the last n one-line commits touching path.
func (r *Repo) FileHistory(path string, n int) (string, error) {
	out, err := r.git("log", "-"+strconv.Itoa(n), "--oneline", "--", path)
	if err != nil {
		return "", fmt.Errorf("git log %s: %w", path, err)
	}
	return out, nil
}

// CommitStat returns the stat summary for a single commit.
func (r *Repo) CommitStat(sha string) (string, error) {
	out, err := r.git("show", "--stat", "--format=%h %s", sha)
	if err != nil {
		return "", fmt.Errorf("git show %s: %w", sha, err)
	}
	return out, nil
}

func (r *Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", r.path}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimRight(string(out), "\n"), nil
}
