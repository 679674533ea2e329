// Package workflow tracks progress through the research → planning →
// implementation cycle for a working directory. Phase is explicit recorded
// state advanced by deliberate transitions, not inferred from artifact
// files. The gate engine consumes it through the read-only Oracle.
package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Phase identifies a workflow stage. The uninitialized stage has no Phase
// value: it is represented by the harness marker being absent, which the
// config layer reports.
type Phase string

const (
	PhaseResearch       Phase = "research"
	PhasePlanning       Phase = "planning"
	PhaseImplementation Phase = "implementation"
)

// StateFileName is the workflow state file under .claude.
const StateFileName = "fic-state.json"

// State is the persisted workflow state.
type State struct {
	Phase            Phase     `json:"phase"`
	ResearchComplete bool      `json:"research_complete"`
	PlanValidated    bool      `json:"plan_validated"`
	Confidence       float64   `json:"confidence,omitempty"`
	LastUpdated      time.Time `json:"last_updated"`
}

// CurrentPhase returns the recorded phase, deriving one from the
// completion flags when the phase field is missing or hand-edited into
// an unknown value.
func (s *State) CurrentPhase() Phase {
	switch s.Phase {
	case PhaseResearch, PhasePlanning, PhaseImplementation:
		return s.Phase
	}
	if s.PlanValidated {
		return PhaseImplementation
	}
	if s.ResearchComplete {
		return PhasePlanning
	}
	return PhaseResearch
}

// StatePath returns the state file location for a working directory.
func StatePath(workDir string) string {
	return filepath.Join(workDir, ".claude", StateFileName)
}

// Load reads the workflow state. A missing file is the default state: the
// research phase with nothing completed. Unreadable or corrupt files are
// errors for callers that mutate state; the gate engine converts them to
// permissive verdicts at its boundary.
func Load(workDir string) (*State, error) {
	data, err := os.ReadFile(StatePath(workDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Phase: PhaseResearch}, nil
		}
		return nil, fmt.Errorf("read workflow state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse workflow state: %w", err)
	}
	return &state, nil
}

// Save writes the state atomically (temp file + rename) and stamps
// LastUpdated.
func Save(state *State, workDir string) error {
	path := StatePath(workDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	state.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workflow state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write workflow state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit workflow state: %w", err)
	}
	return nil
}

// MarkResearchDone records research completion with a confidence score and
// advances to the planning phase.
func MarkResearchDone(workDir string, confidence float64) (*State, error) {
	state, err := Load(workDir)
	if err != nil {
		return nil, err
	}
	state.ResearchComplete = true
	state.Confidence = confidence
	if !state.PlanValidated {
		state.Phase = PhasePlanning
	}
	if err := Save(state, workDir); err != nil {
		return nil, err
	}
	return state, nil
}

// MarkPlanValidated records plan validation and advances to the
// implementation phase. Research must be complete first: transitions
// enforce the cycle order.
func MarkPlanValidated(workDir string) (*State, error) {
	state, err := Load(workDir)
	if err != nil {
		return nil, err
	}
	if !state.ResearchComplete {
		return nil, fmt.Errorf("research phase not complete")
	}
	state.PlanValidated = true
	state.Phase = PhaseImplementation
	if err := Save(state, workDir); err != nil {
		return nil, err
	}
	return state, nil
}

// Reset returns the working directory to a fresh research phase.
func Reset(workDir string) (*State, error) {
	state := &State{Phase: PhaseResearch}
	if err := Save(state, workDir); err != nil {
		return nil, err
	}
	return state, nil
}
