package gitctx

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// initRepo creates a throwaway git repository with a couple of commits.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "first commit")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("two\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("commit", "-am", "second commit")
	return dir
}

func TestOpen_NotARepo(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected error for non-repo directory")
	}
}

func TestRecentCommits(t *testing.T) {
	repo, err := Open(initRepo(t))
	if err != nil {
		t.Fatal(err)
	}
	out, err := repo.RecentCommits(5)
	if err != nil {
		t.Fatalf("RecentCommits: %v", err)
	}
	if !strings.Contains(out, "second commit") || !strings.Contains(out, "first commit") {
		t.Errorf("unexpected log output: %q", out)
	}
	if len(strings.Split(out, "\n")) != 2 {
		t.Errorf("want 2 log lines, got %q", out)
	}
}

func TestCheckout(t *testing.T) {
	dir := initRepo(t)
	repo, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command("git", "-C", dir, "branch", "feature")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git branch: %v\n%s", err, out)
	}
	if err := repo.Checkout("feature"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if err := repo.Checkout("no-such-branch"); err == nil {
		t.Error("expected error for missing branch")
	}
}

func TestFileHistory(t *testing.T) {
	repo, err := Open(initRepo(t))
	if err != nil {
		t.Fatal(err)
	}
	out, err := repo.FileHistory("a.txt", 1)
	if err != nil {
		t.Fatalf("FileHistory: %v", err)
	}
	if !strings.Contains(out, "second commit") {
		t.Errorf("unexpected history: %q", out)
	}
}
