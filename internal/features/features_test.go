package features

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	list, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load on missing file should not error: %v", err)
	}
	if len(list.Features) != 0 {
		t.Errorf("expected empty checklist, got %d entries", len(list.Features))
	}
}

func TestLoadCorruptFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("expected error for corrupt checklist")
	}
}

func TestAddAssignsIDAndStatus(t *testing.T) {
	dir := t.TempDir()

	if err := Add(dir, Feature{Name: "login"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	list, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(list.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(list.Features))
	}
	f := list.Features[0]
	if f.ID != "feat-001" {
		t.Errorf("expected generated id feat-001, got %q", f.ID)
	}
	if f.Status != StatusPlanned {
		t.Errorf("expected default status planned, got %q", f.Status)
	}
	if list.Updated.IsZero() {
		t.Error("expected Updated to be stamped")
	}
}

func TestAddRejectsDuplicateID(t *testing.T) {
	dir := t.TempDir()

	if err := Add(dir, Feature{ID: "auth", Name: "auth"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := Add(dir, Feature{ID: "auth", Name: "auth again"}); err == nil {
		t.Error("expected duplicate id to be rejected")
	}
}

func TestSetStatusAndMarkCompleted(t *testing.T) {
	dir := t.TempDir()

	if err := Add(dir, Feature{ID: "auth", Name: "auth"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := SetStatus(dir, "auth", StatusInProgress); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	active, err := InProgress(dir)
	if err != nil || len(active) != 1 {
		t.Fatalf("expected 1 in-progress feature, got %v (err %v)", active, err)
	}

	if err := MarkCompleted(dir, "auth"); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	active, _ = InProgress(dir)
	if len(active) != 0 {
		t.Errorf("expected no in-progress features after completion, got %v", active)
	}
}

func TestSetStatusValidation(t *testing.T) {
	dir := t.TempDir()

	if err := Add(dir, Feature{ID: "auth", Name: "auth"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := SetStatus(dir, "auth", "shipped"); err == nil {
		t.Error("expected unknown status to be rejected")
	}
	if err := SetStatus(dir, "ghost", StatusCompleted); err == nil {
		t.Error("expected unknown id to be rejected")
	}
}

func TestSummarizeCountsAndNext(t *testing.T) {
	dir := t.TempDir()

	entries := []Feature{
		{ID: "a", Name: "a", Status: StatusCompleted},
		{ID: "b", Name: "b", Status: StatusInProgress},
		{ID: "c", Name: "c", Status: StatusPlanned},
		{ID: "d", Name: "d", Status: StatusPlanned},
		{ID: "e", Name: "e", Status: StatusInProgress},
		{ID: "f", Name: "f", Status: StatusPlanned},
		{ID: "g", Name: "g", Status: StatusPlanned},
	}
	for _, f := range entries {
		if err := Add(dir, f); err != nil {
			t.Fatalf("Add(%s) failed: %v", f.ID, err)
		}
	}

	s, err := Summarize(dir)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Total != 7 || s.Completed != 1 || s.InProgress != 2 || s.Planned != 4 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if len(s.Next) != 5 {
		t.Fatalf("expected 5 next items, got %d", len(s.Next))
	}
	if s.Next[0].ID != "b" {
		t.Errorf("expected first unfinished feature b, got %s", s.Next[0].ID)
	}
	for _, f := range s.Next {
		if f.Status == StatusCompleted {
			t.Errorf("completed feature %s listed as next", f.ID)
		}
	}
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()

	if err := Add(dir, Feature{ID: "a", Name: "a"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".claude", "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}

	data, err := os.ReadFile(Path(dir))
	if err != nil {
		t.Fatalf("checklist not written: %v", err)
	}
	if !strings.Contains(string(data), `"features"`) {
		t.Errorf("unexpected checklist content %q", data)
	}
}
