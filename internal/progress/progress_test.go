package progress

import (
	"os"
	"strings"
	"testing"
)

func TestAppendCreatesFile(t *testing.T) {
	dir := t.TempDir()

	if err := Append(dir, "implemented login flow"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	content, err := Read(dir)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !strings.Contains(content, "implemented login flow") {
		t.Errorf("expected entry in log, got %q", content)
	}
	if !strings.HasPrefix(content, "[") {
		t.Errorf("expected timestamped entry, got %q", content)
	}
}

func TestAppendAccumulates(t *testing.T) {
	dir := t.TempDir()

	for _, msg := range []string{"first", "second", "third"} {
		if err := Append(dir, msg); err != nil {
			t.Fatalf("Append(%q) failed: %v", msg, err)
		}
	}

	entries, err := Recent(dir, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !strings.HasSuffix(entries[0], "first") || !strings.HasSuffix(entries[2], "third") {
		t.Errorf("entries out of order: %v", entries)
	}
}

func TestRecentLimitsToLastN(t *testing.T) {
	dir := t.TempDir()

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		if err := Append(dir, msg); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := Recent(dir, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !strings.HasSuffix(entries[0], "d") || !strings.HasSuffix(entries[1], "e") {
		t.Errorf("expected last two entries, got %v", entries)
	}
}

func TestReadMissingFileIsEmpty(t *testing.T) {
	content, err := Read(t.TempDir())
	if err != nil {
		t.Fatalf("Read on missing file should not error: %v", err)
	}
	if content != "" {
		t.Errorf("expected empty content, got %q", content)
	}
}

func TestInitializeWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()

	if err := Initialize(dir, "demo-project"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	content, _ := Read(dir)
	if !strings.Contains(content, "demo-project") {
		t.Errorf("expected project name in header, got %q", content)
	}

	if err := Append(dir, "entry"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := Initialize(dir, "demo-project"); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}
	content, _ = Read(dir)
	if !strings.Contains(content, "entry") {
		t.Errorf("Initialize overwrote existing log: %q", content)
	}
	if strings.Count(content, "# Progress Log") != 1 {
		t.Errorf("expected a single header, got %q", content)
	}
}

func TestRecentSkipsHeaderLines(t *testing.T) {
	dir := t.TempDir()

	if err := Initialize(dir, "demo"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := Append(dir, "only entry"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := Recent(dir, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %v", len(entries), entries)
	}
}

func TestAppendRaw(t *testing.T) {
	dir := t.TempDir()

	if err := AppendRaw(dir, "--- session boundary ---"); err != nil {
		t.Fatalf("AppendRaw failed: %v", err)
	}
	content, _ := Read(dir)
	if content != "--- session boundary ---\n" {
		t.Errorf("unexpected content %q", content)
	}
}

func TestLogPermissions(t *testing.T) {
	dir := t.TempDir()

	if err := Append(dir, "x"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	info, err := os.Stat(Path(dir))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600 permissions, got %v", perm)
	}
}
