package initscript

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, dir, body string, mode os.FileMode) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not installed")
	}
	if err := os.MkdirAll(filepath.Join(dir, ".claude"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(dir), []byte(body), mode); err != nil {
		t.Fatal(err)
	}
}

func TestRunMissingScript(t *testing.T) {
	r := Run(context.Background(), t.TempDir(), 0)
	if r.Executed {
		t.Error("missing script should not count as executed")
	}
	if Describe(r) != "" {
		t.Errorf("missing script should describe as empty, got %q", Describe(r))
	}
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "#!/bin/bash\necho ready\n", 0o755)

	r := Run(context.Background(), dir, 10*time.Second)
	if !r.Executed || !r.Success {
		t.Fatalf("expected success, got %+v", r)
	}
	if !strings.Contains(r.Output, "ready") {
		t.Errorf("expected script output, got %q", r.Output)
	}
	if !strings.Contains(Describe(r), "init.sh ran") {
		t.Errorf("unexpected description %q", Describe(r))
	}
}

func TestRunNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "#!/bin/bash\nexit 3\n", 0o755)

	r := Run(context.Background(), dir, 10*time.Second)
	if !r.Executed || r.Success {
		t.Fatalf("expected failure, got %+v", r)
	}
	if !strings.Contains(r.Detail, "status 3") {
		t.Errorf("expected exit status in detail, got %q", r.Detail)
	}
}

func TestRunNotExecutable(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "#!/bin/bash\necho hi\n", 0o644)

	r := Run(context.Background(), dir, 10*time.Second)
	if r.Success {
		t.Error("non-executable script should not run")
	}
	if !strings.Contains(r.Detail, "not executable") {
		t.Errorf("expected executable hint, got %q", r.Detail)
	}
}

func TestRunOversizeScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "# "+strings.Repeat("x", MaxScriptSize), 0o755)

	r := Run(context.Background(), dir, 10*time.Second)
	if r.Success {
		t.Error("oversize script should not run")
	}
	if !strings.Contains(r.Detail, "too large") {
		t.Errorf("expected size refusal, got %q", r.Detail)
	}
}

func TestRunTruncatesOutput(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "#!/bin/bash\nfor i in $(seq 1 200); do echo chatter line $i; done\n", 0o755)

	r := Run(context.Background(), dir, 10*time.Second)
	if !r.Success {
		t.Fatalf("expected success, got %+v", r)
	}
	if len(r.Output) > outputLimit+len("...[truncated]") {
		t.Errorf("output not truncated: %d bytes", len(r.Output))
	}
	if !strings.HasSuffix(r.Output, "...[truncated]") {
		t.Errorf("expected truncation marker, got tail %q", r.Output[len(r.Output)-30:])
	}
}

func TestRunTimeout(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "#!/bin/bash\nsleep 5\n", 0o755)

	r := Run(context.Background(), dir, 100*time.Millisecond)
	if r.Success {
		t.Error("timed-out script should not succeed")
	}
	if !strings.Contains(r.Detail, "timed out") {
		t.Errorf("expected timeout detail, got %q", r.Detail)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Error("no script yet")
	}
	writeScript(t, dir, "#!/bin/bash\n", 0o755)
	if !Exists(dir) {
		t.Error("script should exist")
	}
}
