package hook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/contextbudget"
	"github.com/ppiankov/phasegate/internal/workflow"
)

// PreservedContextFile carries the phase and focus directive across a
// compaction, under <workDir>/.claude/.
const PreservedContextFile = "fic-preserved-context.json"

// PreCompact snapshots the workflow position before the agent compacts
// its context, resets the context budget tracker, and answers with a
// focus directive so the post-compaction session picks up mid-phase.
func PreCompact(env Env, req *Request) *Response {
	if !env.Initialized || !env.Cfg.Bool(config.KeyFICEnabled) {
		return Empty()
	}

	session := sessionID(req)
	phase := currentPhase(env.WorkDir)
	focus := focusDirective(env.WorkDir, phase)

	var parts []string

	var estimate int
	var utilization float64
	if env.Cfg.Bool(config.KeyFICContextTracking) {
		if tracker, err := contextbudget.Load(env.WorkDir, session); err == nil {
			estimate = tracker.TokenEstimate
			utilization = tracker.Utilization()
			parts = append(parts, fmt.Sprintf("[FIC] Context state: %.0f%% utilization, %d tokens estimated",
				utilization*100, estimate))

			tracker.Reset(session)
			_ = tracker.Save(env.WorkDir)
		}
	}

	if env.Cfg.SubBool(config.KeyFICConfig, config.FICPreserveEssentialOnCompact, true) {
		if savePreservedContext(env.WorkDir, session, phase, focus, estimate, utilization) {
			parts = append(parts, "[FIC] Context preserved for the next session.")
		}
	}

	parts = append(parts, "",
		"=== CONTEXT PRESERVATION ===",
		fmt.Sprintf("Phase: %s", phase),
		fmt.Sprintf("Focus: %s", focus),
		"",
		"After compaction, continue with the focus directive above.",
		"Disregard exploration noise. Complete the current phase.")

	return Message(strings.Join(parts, "\n"))
}

// focusDirective states what the next session should do first.
func focusDirective(workDir string, phase workflow.Phase) string {
	state, err := workflow.Load(workDir)
	if err != nil {
		return "Review context and determine next steps."
	}

	switch phase {
	case workflow.PhaseResearch:
		return "Continue research. Build confidence, then run `phasegate phase research-done`."
	case workflow.PhasePlanning:
		if state.Confidence > 0 {
			return fmt.Sprintf("Research complete (confidence %.0f%%). Create and validate the implementation plan.",
				state.Confidence*100)
		}
		return "Research complete. Create and validate the implementation plan."
	case workflow.PhaseImplementation:
		return "Plan validated. Continue implementation and track progress against the plan."
	default:
		return "Review context and determine next steps."
	}
}

func savePreservedContext(workDir, session string, phase workflow.Phase, focus string, estimate int, utilization float64) bool {
	dir := filepath.Join(workDir, ".claude")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false
	}

	preserved := map[string]any{
		"timestamp":                 time.Now().UTC().Format(time.RFC3339),
		"session_id":                session,
		"phase":                     string(phase),
		"focus_directive":           focus,
		"token_estimate_at_compact": estimate,
		"utilization_at_compact":    utilization,
	}
	data, err := json.MarshalIndent(preserved, "", "  ")
	if err != nil {
		return false
	}
	return os.WriteFile(filepath.Join(dir, PreservedContextFile), data, 0o600) == nil
}
