// Package contextbudget estimates context-window utilization from tool
// call counts.
//
// Hooks cannot observe the real context window, so weighted per-tool
// token estimates stand in for it. The estimate is deliberately
// conservative: it is advice for when to compact, not an accounting
// system.
package contextbudget

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the tracker state file kept under <workDir>/.claude/.
const FileName = "fic-context.json"

// MaxContextTokens is the assumed context window size.
const MaxContextTokens = 200000

// BaseOverhead is added per tool call for message framing.
const BaseOverhead = 400

// conversationMultiplier caps the depth penalty applied to long sessions.
const conversationMultiplier = 1.15

const defaultWeight = 500

// toolWeights are average token estimates per tool use, covering input,
// output, and the surrounding assistant turn.
var toolWeights = map[string]int{
	"Read":  1500,
	"Grep":  800,
	"Glob":  300,
	"Task":  2500,
	"Edit":  600,
	"Write": 500,
	"Bash":  700,
}

const (
	filePerm = 0o600
	dirPerm  = 0o700
)

// Tracker accumulates tool usage for one working directory. State
// persists across sessions until a compaction resets it.
type Tracker struct {
	SessionID     string         `json:"session_id"`
	Started       time.Time      `json:"started"`
	LastSessionID string         `json:"last_session_id,omitempty"`
	Compactions   int            `json:"compactions"`
	Calls         map[string]int `json:"calls,omitempty"`
	TotalCalls    int            `json:"total_calls"`
	TokenEstimate int            `json:"token_estimate"`
	LastUpdated   time.Time      `json:"last_updated"`
}

// StatePath returns the tracker file location.
func StatePath(workDir string) string {
	return filepath.Join(workDir, ".claude", FileName)
}

// Load reads the tracker for a session. A missing file starts a fresh
// tracker; a session ID change is recorded but does not reset counts,
// since context carries across sessions until compaction.
func Load(workDir, sessionID string) (*Tracker, error) {
	data, err := os.ReadFile(StatePath(workDir))
	if err != nil {
		if os.IsNotExist(err) {
			now := time.Now().UTC()
			return &Tracker{SessionID: sessionID, Started: now, LastUpdated: now}, nil
		}
		return nil, fmt.Errorf("contextbudget: read state: %w", err)
	}

	var t Tracker
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("contextbudget: parse state: %w", err)
	}
	if t.SessionID != sessionID {
		t.LastSessionID = t.SessionID
		t.SessionID = sessionID
	}
	return &t, nil
}

// Save writes the tracker atomically.
func (t *Tracker) Save(workDir string) error {
	path := StatePath(workDir)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("contextbudget: create state dir: %w", err)
	}

	t.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("contextbudget: encode state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("contextbudget: write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("contextbudget: replace state: %w", err)
	}
	return nil
}

// Record accounts for one tool call. resultSize is the byte length of
// the tool result when known; large results override the flat weight.
func (t *Tracker) Record(tool string, resultSize int) {
	t.TotalCalls++
	if t.Calls == nil {
		t.Calls = make(map[string]int)
	}
	t.Calls[tool]++

	weight, ok := toolWeights[tool]
	if !ok {
		weight = defaultWeight
	}
	tokens := BaseOverhead + weight
	if resultTokens := resultSize / 4; resultTokens > weight {
		tokens = BaseOverhead + resultTokens
	}

	// Later calls cost more because each turn re-carries history.
	depth := 1.0
	if t.TotalCalls > 10 {
		depth = 1.0 + float64(t.TotalCalls-10)*0.01
		if depth > conversationMultiplier {
			depth = conversationMultiplier
		}
	}

	t.TokenEstimate += int(float64(tokens) * depth)
}

// Utilization returns the estimated fraction of the context window used.
func (t *Tracker) Utilization() float64 {
	return float64(t.TokenEstimate) / float64(MaxContextTokens)
}

// NeedsCompaction reports whether utilization crossed the threshold.
func (t *Tracker) NeedsCompaction(threshold float64) bool {
	return t.Utilization() >= threshold
}

// OverToolBudget reports whether the raw call count crossed the limit.
func (t *Tracker) OverToolBudget(maxCalls int) bool {
	return maxCalls > 0 && t.TotalCalls >= maxCalls
}

// Reset clears counters after a compaction.
func (t *Tracker) Reset(sessionID string) {
	t.Compactions++
	t.LastSessionID = t.SessionID
	t.SessionID = sessionID
	t.Started = time.Now().UTC()
	t.Calls = nil
	t.TotalCalls = 0
	t.TokenEstimate = 0
}

// Describe returns a one-line usage summary for status output.
func (t *Tracker) Describe() string {
	return fmt.Sprintf("%d tool calls, ~%dk tokens, %.0f%% of window",
		t.TotalCalls, t.TokenEstimate/1000, t.Utilization()*100)
}
