package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/gitinfo"
	"github.com/ppiankov/phasegate/internal/initscript"
	"github.com/ppiankov/phasegate/internal/progress"
	"github.com/ppiankov/phasegate/internal/testrunner"
	"github.com/ppiankov/phasegate/internal/workflow"
)

// progressTailLines caps how much of the progress log is replayed into
// a new session.
const progressTailLines = 50

// initHint is shown whenever a session starts in an uninitialized
// project.
const initHint = "[FIC System] This project has not been initialized. " +
	"Run `phasegate init` to enable the research → planning → implementation " +
	"workflow with verification gates."

// SessionStart assembles the startup context message: workflow state,
// git status, recent progress, and the results of the optional setup
// script and baseline test run.
func SessionStart(env Env, req *Request) *Response {
	if !env.Initialized {
		return Message(initHint)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== SESSION STARTUP ===\n")
	fmt.Fprintf(&b, "Started: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Working directory: %s\n", env.WorkDir)
	fmt.Fprintf(&b, "Mode: %s\n\n", env.Cfg.Strictness())

	state, err := workflow.Load(env.WorkDir)
	if err != nil {
		state = &workflow.State{Phase: workflow.PhaseResearch}
	}
	phase := state.CurrentPhase()
	if env.Cfg.Bool(config.KeyFICEnabled) {
		writeWorkflowSection(&b, env.WorkDir, state)
	}

	writeGitSection(&b, env.WorkDir)
	writeProgressSection(&b, env.WorkDir)

	if env.Cfg.Bool(config.KeyInitScriptExecution) {
		if r := initscript.Run(context.Background(), env.WorkDir, 0); r.Executed {
			fmt.Fprintf(&b, "--- INIT SCRIPT ---\n%s\n\n", initscript.Describe(r))
		}
	}

	if env.Cfg.Bool(config.KeyBaselineTestsOnStartup) {
		writeBaselineSection(&b, env)
	}

	b.WriteString("=== END SESSION CONTEXT ===\n\n")
	writeAutomationLine(&b, env.Cfg)
	b.WriteString(phaseGuidance(phase))

	return Message(b.String())
}

func currentPhase(workDir string) workflow.Phase {
	state, err := workflow.Load(workDir)
	if err != nil {
		return workflow.PhaseResearch
	}
	return state.CurrentPhase()
}

func writeWorkflowSection(b *strings.Builder, workDir string, state *workflow.State) {
	fmt.Fprintf(b, "--- WORKFLOW STATE ---\nPhase: %s\n", state.CurrentPhase())
	if state.Confidence > 0 {
		fmt.Fprintf(b, "Research confidence: %.0f%%\n", state.Confidence*100)
	}
	fmt.Fprintf(b, "Research complete: %v\nPlan validated: %v\n", state.ResearchComplete, state.PlanValidated)

	if preserved := loadPreservedContext(workDir); preserved != nil {
		if focus, ok := preserved["focus_directive"].(string); ok && focus != "" {
			fmt.Fprintf(b, "\nPrior session focus: %s\n", focus)
		}
		if ts, ok := preserved["timestamp"].(string); ok && ts != "" {
			fmt.Fprintf(b, "Context preserved at: %s\n", ts)
		}
	}
	b.WriteString("\n")
}

func writeGitSection(b *strings.Builder, workDir string) {
	if !gitinfo.IsRepo(workDir) {
		return
	}

	b.WriteString("--- GIT STATUS ---\n")
	if status := gitinfo.Status(workDir); status != "" {
		b.WriteString(status + "\n")
	} else {
		b.WriteString("(clean)\n")
	}

	b.WriteString("\n--- RECENT COMMITS ---\n")
	if log := gitinfo.Log(workDir, 10); log != "" {
		b.WriteString(log + "\n")
	} else {
		b.WriteString("(no commits)\n")
	}
	b.WriteString("\n")
}

func writeProgressSection(b *strings.Builder, workDir string) {
	content, err := progress.Read(workDir)
	if err != nil || content == "" {
		return
	}

	b.WriteString("--- PROGRESS LOG ---\n")
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) > progressTailLines {
		b.WriteString("[...truncated...]\n")
		lines = lines[len(lines)-progressTailLines:]
	}
	b.WriteString(strings.Join(lines, "\n") + "\n\n")
}

func writeBaselineSection(b *strings.Builder, env Env) {
	if testrunner.Detect(env.WorkDir, env.Cfg) == nil {
		return
	}

	summary := testrunner.Run(context.Background(), env.WorkDir, env.Cfg, 0)
	fmt.Fprintf(b, "--- BASELINE TESTS ---\n%s: %s\n\n", summary.Command, testrunner.Describe(summary))
}

func writeAutomationLine(b *strings.Builder, cfg config.Config) {
	var enabled []string
	if cfg.Bool(config.KeyAutoProgressLogging) {
		enabled = append(enabled, "auto-logging")
	}
	if cfg.Bool(config.KeyFICEnabled) && cfg.Bool(config.KeyFICContextTracking) {
		enabled = append(enabled, "context tracking")
	}
	if cfg.Bool(config.KeyFICEnabled) {
		enabled = append(enabled, "phase gates")
	}
	if len(enabled) > 0 {
		fmt.Fprintf(b, "Automation enabled: %s\n\n", strings.Join(enabled, ", "))
	}
}

func loadPreservedContext(workDir string) map[string]any {
	data, err := os.ReadFile(filepath.Join(workDir, ".claude", PreservedContextFile))
	if err != nil {
		return nil
	}
	var preserved map[string]any
	if err := json.Unmarshal(data, &preserved); err != nil {
		return nil
	}
	return preserved
}

func phaseGuidance(phase workflow.Phase) string {
	switch phase {
	case workflow.PhaseResearch:
		return "IMPORTANT: Current phase is RESEARCH. Build understanding before editing.\n" +
			"Use Read, Grep, Glob, and Task tools; run `phasegate phase research-done` when confident."
	case workflow.PhasePlanning:
		return "IMPORTANT: Research is complete. Create and validate an implementation plan.\n" +
			"Run `phasegate phase plan-validated` once the plan holds up."
	case workflow.PhaseImplementation:
		return "IMPORTANT: Plan validated. Implement the plan and track progress against it."
	default:
		return "IMPORTANT: Review the context above and determine the current phase."
	}
}
