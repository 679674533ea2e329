package gitinfo

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// initRepo creates a throwaway repository with one commit.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	run("init", "-q")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "README.md")
	run("commit", "-q", "-m", "initial commit")
	return dir
}

func TestIsRepo(t *testing.T) {
	dir := initRepo(t)

	if !IsRepo(dir) {
		t.Error("expected initialized directory to be a repo")
	}
	if IsRepo(t.TempDir()) {
		t.Error("expected bare temp directory to not be a repo")
	}
}

func TestStatusCleanAndDirty(t *testing.T) {
	dir := initRepo(t)

	if s := Status(dir); s != "" {
		t.Errorf("expected clean status, got %q", s)
	}
	if HasUncommittedChanges(dir) {
		t.Error("fresh repo should have no uncommitted changes")
	}

	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if s := Status(dir); !strings.Contains(s, "main.go") {
		t.Errorf("expected main.go in status, got %q", s)
	}
	if !HasUncommittedChanges(dir) {
		t.Error("expected uncommitted changes after writing a file")
	}
}

func TestLog(t *testing.T) {
	dir := initRepo(t)

	out := Log(dir, 5)
	if !strings.Contains(out, "initial commit") {
		t.Errorf("expected initial commit in log, got %q", out)
	}
}

func TestModifiedFilesIncludesUntracked(t *testing.T) {
	dir := initRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	files := ModifiedFiles(dir)
	found := false
	for _, f := range files {
		if f == "new.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected untracked new.txt in %v", files)
	}
}

func TestCodeWasModified(t *testing.T) {
	dir := initRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if CodeWasModified(dir) {
		t.Error("a text file should not count as code")
	}

	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !CodeWasModified(dir) {
		t.Error("a new .go file should count as code")
	}
}

func TestFileModified(t *testing.T) {
	dir := initRepo(t)

	if FileModified(dir, "README.md") {
		t.Error("committed file should not read as modified")
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileModified(dir, "README.md") {
		t.Error("edited file should read as modified")
	}
}

func TestDegradesOutsideRepo(t *testing.T) {
	dir := t.TempDir()

	if s := Status(dir); s != "" {
		t.Errorf("Status outside repo should be empty, got %q", s)
	}
	if out := Log(dir, 3); out != "" {
		t.Errorf("Log outside repo should be empty, got %q", out)
	}
	if files := ModifiedFiles(dir); len(files) != 0 {
		t.Errorf("ModifiedFiles outside repo should be empty, got %v", files)
	}
}
