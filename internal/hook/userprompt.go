package hook

import (
	"fmt"
	"strings"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/contextbudget"
	"github.com/ppiankov/phasegate/internal/workflow"
)

// maxPromptScan caps how much of a prompt is pattern-matched.
const maxPromptScan = 100000

// planningIndicators suggest the user wants code changed.
var planningIndicators = []string{
	"implement", "build", "refactor", "modify", "fix the bug", "add a feature",
	"create a function", "update the code", "change the implementation",
}

// UserPromptSubmit nudges the workflow at prompt time: compaction
// advice when the context budget is spent, research delegation when the
// prompt looks like exploration, phase reminders when it looks like
// implementation work arriving too early.
func UserPromptSubmit(env Env, req *Request) *Response {
	if !env.Initialized || !env.Cfg.Bool(config.KeyFICEnabled) {
		return Empty()
	}

	prompt := req.Prompt()
	if prompt == "" {
		return Empty()
	}
	if len(prompt) > maxPromptScan {
		prompt = prompt[:maxPromptScan]
	}

	if env.Cfg.Bool(config.KeyFICContextTracking) {
		if tracker, err := contextbudget.Load(env.WorkDir, sessionID(req)); err == nil {
			threshold := env.Cfg.SubFloat(config.KeyFICConfig, config.FICAutoCompactThreshold, 0.70)
			if tracker.NeedsCompaction(threshold) {
				return Message(compactionDirective(tracker, threshold))
			}
		}
	}

	phase := currentPhase(env.WorkDir)

	if env.Cfg.Bool(config.KeyFICAutoDelegateResearch) && matchesResearchPattern(env.Cfg, prompt) {
		return Message(researchDirective(prompt, phase))
	}
	if matchesAny(prompt, planningIndicators) {
		if directive := planningDirective(env.WorkDir, phase); directive != "" {
			return Message(directive)
		}
	}
	return Empty()
}

// matchesResearchPattern checks the prompt against the configurable
// delegation patterns, case-insensitively.
func matchesResearchPattern(cfg config.Config, prompt string) bool {
	patterns := cfg.SubStrings(config.KeyFICConfig, config.FICResearchDelegationPatterns)
	lower := strings.ToLower(prompt)
	for _, p := range patterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func researchDirective(prompt string, phase workflow.Phase) string {
	if len(prompt) > 100 {
		prompt = prompt[:100] + "..."
	}
	return fmt.Sprintf(`[FIC] Research request detected.

DIRECTIVE: For complex exploration, delegate to a research subagent to
keep exploration noise out of the main context. Use the Task tool with a
research agent; only essential findings should come back.

Current phase: %s
Request: %s`, phase, prompt)
}

func planningDirective(workDir string, phase workflow.Phase) string {
	state, err := workflow.Load(workDir)
	if err != nil {
		return ""
	}

	switch phase {
	case workflow.PhaseResearch:
		if state.ResearchComplete {
			return ""
		}
		return "[FIC] Implementation request detected, but research is not complete.\n\n" +
			"DIRECTIVE: Before implementing, understand what existing code is affected,\n" +
			"what patterns the codebase uses, and what dependencies exist.\n" +
			"Run `phasegate phase research-done` once confident."
	case workflow.PhasePlanning:
		return "[FIC] Implementation request detected. Research is complete.\n\n" +
			"DIRECTIVE: Create and validate an implementation plan before writing code:\n" +
			"specific steps, files to modify, verification criteria.\n" +
			"Run `phasegate phase plan-validated` when the plan holds up."
	default:
		return ""
	}
}
