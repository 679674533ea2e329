// Package features tracks the project feature checklist.
//
// The checklist is a small JSON file under .claude/ that the hooks read
// to remind the agent of unfinished work and that the CLI edits on
// behalf of the user.
package features

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the checklist file kept under <workDir>/.claude/.
const FileName = "claude-features.json"

// Status values for a checklist entry.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

const (
	filePerm = 0o600
	dirPerm  = 0o700
)

// Feature is one checklist entry.
type Feature struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Priority    int    `json:"priority,omitempty"`
}

// Checklist is the persisted file structure.
type Checklist struct {
	Features []Feature `json:"features"`
	Updated  time.Time `json:"updated,omitempty"`
}

// Summary aggregates checklist counts for status displays.
type Summary struct {
	Total      int
	Planned    int
	InProgress int
	Completed  int
	Next       []Feature
}

// Path returns the checklist location for a working directory.
func Path(workDir string) string {
	return filepath.Join(workDir, ".claude", FileName)
}

// Exists reports whether a checklist file is present.
func Exists(workDir string) bool {
	_, err := os.Stat(Path(workDir))
	return err == nil
}

// Load reads the checklist. A missing file loads as an empty checklist;
// a corrupt file is an error.
func Load(workDir string) (*Checklist, error) {
	data, err := os.ReadFile(Path(workDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &Checklist{}, nil
		}
		return nil, fmt.Errorf("features: read checklist: %w", err)
	}

	var list Checklist
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("features: parse checklist: %w", err)
	}
	return &list, nil
}

// Save writes the checklist atomically and stamps Updated.
func Save(workDir string, list *Checklist) error {
	path := Path(workDir)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("features: create state dir: %w", err)
	}

	list.Updated = time.Now().UTC()
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("features: encode checklist: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("features: write checklist: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("features: replace checklist: %w", err)
	}
	return nil
}

// Add appends a feature. An empty ID is assigned from the running count;
// an empty status defaults to planned. Duplicate IDs are rejected.
func Add(workDir string, f Feature) error {
	list, err := Load(workDir)
	if err != nil {
		return err
	}

	if f.ID == "" {
		f.ID = fmt.Sprintf("feat-%03d", len(list.Features)+1)
	}
	if f.Status == "" {
		f.Status = StatusPlanned
	}
	for _, existing := range list.Features {
		if existing.ID == f.ID {
			return fmt.Errorf("features: duplicate id %q", f.ID)
		}
	}

	list.Features = append(list.Features, f)
	return Save(workDir, list)
}

// SetStatus updates one feature's status by ID.
func SetStatus(workDir, id, status string) error {
	switch status {
	case StatusPlanned, StatusInProgress, StatusCompleted:
	default:
		return fmt.Errorf("features: unknown status %q", status)
	}

	list, err := Load(workDir)
	if err != nil {
		return err
	}
	for i := range list.Features {
		if list.Features[i].ID == id {
			list.Features[i].Status = status
			return Save(workDir, list)
		}
	}
	return fmt.Errorf("features: no feature with id %q", id)
}

// MarkCompleted marks one feature completed by ID.
func MarkCompleted(workDir, id string) error {
	return SetStatus(workDir, id, StatusCompleted)
}

// Summarize returns aggregate counts plus up to five unfinished entries
// in file order.
func Summarize(workDir string) (*Summary, error) {
	list, err := Load(workDir)
	if err != nil {
		return nil, err
	}

	s := &Summary{Total: len(list.Features)}
	for _, f := range list.Features {
		switch f.Status {
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		default:
			s.Planned++
		}
		if f.Status != StatusCompleted && len(s.Next) < 5 {
			s.Next = append(s.Next, f)
		}
	}
	return s, nil
}

// InProgress returns the features currently being worked on.
func InProgress(workDir string) ([]Feature, error) {
	list, err := Load(workDir)
	if err != nil {
		return nil, err
	}
	var active []Feature
	for _, f := range list.Features {
		if f.Status == StatusInProgress {
			active = append(active, f)
		}
	}
	return active, nil
}
