package hook

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/contextbudget"
	"github.com/ppiankov/phasegate/internal/features"
	"github.com/ppiankov/phasegate/internal/progress"
)

// substantialEditBytes is the tool-result size past which an edit is
// logged as significant.
const substantialEditBytes = 500

// PostToolUse observes completed tool calls: it feeds the context
// budget tracker, auto-logs significant changes, and surfaces test
// outcomes. It runs even at the relaxed level for context tracking,
// which has no enforcement effect.
func PostToolUse(env Env, req *Request) *Response {
	if !env.Initialized {
		return Empty()
	}

	var messages []string

	if env.Cfg.Bool(config.KeyFICEnabled) && env.Cfg.Bool(config.KeyFICContextTracking) {
		msg, critical := trackContext(env, req)
		if critical {
			return Message(msg)
		}
		if msg != "" {
			messages = append(messages, msg)
		}
	}

	if env.Cfg.IsRelaxed() {
		return collect(messages)
	}

	tool := req.ToolName
	if tool != "Edit" && tool != "Write" && tool != "Bash" {
		return collect(messages)
	}

	if env.Cfg.Bool(config.KeyAutoProgressLogging) {
		autoLogChange(env.WorkDir, req)
	}

	if tool == "Bash" {
		if msg := testResultMessage(req.ToolResult); msg != "" {
			messages = append(messages, msg)
			if strings.Contains(msg, "Tests passed") && env.Cfg.Bool(config.KeyFeatureEnforcement) {
				if reminder := featureReminder(env.WorkDir); reminder != "" {
					messages = append(messages, reminder)
				}
			}
		}
	}

	return collect(messages)
}

func collect(messages []string) *Response {
	if len(messages) == 0 {
		return Empty()
	}
	return Message(strings.Join(messages, "\n"))
}

// trackContext accounts for one tool call and returns compaction
// advice. critical means the response should carry nothing else.
func trackContext(env Env, req *Request) (msg string, critical bool) {
	tracker, err := contextbudget.Load(env.WorkDir, sessionID(req))
	if err != nil {
		return "", false
	}

	tracker.Record(req.ToolName, len(req.ToolResult))
	_ = tracker.Save(env.WorkDir)

	threshold := env.Cfg.SubFloat(config.KeyFICConfig, config.FICAutoCompactThreshold, 0.70)
	if tracker.NeedsCompaction(threshold) {
		return compactionDirective(tracker, threshold), true
	}

	toolBudget := env.Cfg.SubInt(config.KeyFICConfig, config.FICCompactionToolThreshold, 25)
	if tracker.OverToolBudget(toolBudget) && tracker.Utilization() >= 0.60 {
		return fmt.Sprintf("[FIC] Context utilization at %.0f%%. Consider compacting or using subagents for research.",
			tracker.Utilization()*100), false
	}
	return "", false
}

func compactionDirective(t *contextbudget.Tracker, threshold float64) string {
	return fmt.Sprintf(`[FIC] CRITICAL: context utilization at %.0f%% (threshold %.0f%%, ~%d tokens estimated).

STOP current work and run /compact now. The pre-compact hook preserves
the current phase and focus automatically; continuing without compacting
risks losing context mid-task.`,
		t.Utilization()*100, threshold*100, t.TokenEstimate)
}

// autoLogChange appends significant modifications to the progress log.
// Write errors are ignored; logging must never disturb the session.
func autoLogChange(workDir string, req *Request) {
	path := req.FilePath()
	if path == "" && req.ToolName != "Bash" {
		return
	}

	var entry string
	switch req.ToolName {
	case "Write":
		entry = fmt.Sprintf("AUTO: Created %s (new file created)", filepath.Base(path))
	case "Edit":
		if len(req.ToolResult) <= substantialEditBytes {
			return
		}
		entry = fmt.Sprintf("AUTO: Modified %s (substantial edit)", filepath.Base(path))
	case "Bash":
		cmd := req.Command()
		if !isBuildOrTestCommand(cmd) {
			return
		}
		if len(cmd) > 40 {
			cmd = cmd[:40] + "..."
		}
		entry = fmt.Sprintf("AUTO: Ran '%s' (build/test command)", cmd)
	default:
		return
	}

	_ = progress.Append(workDir, entry)
}

func isBuildOrTestCommand(cmd string) bool {
	for _, marker := range []string{"test", "build", "deploy", "npm", "cargo", "go build"} {
		if strings.Contains(cmd, marker) {
			return true
		}
	}
	return false
}

// testResultMessage inspects Bash output for test suite outcomes.
func testResultMessage(result string) string {
	if result == "" {
		return ""
	}

	passed := strings.Contains(result, "passed") || strings.Contains(result, "PASSED") ||
		strings.Contains(result, "test result: ok")
	failed := strings.Contains(result, "failed") || strings.Contains(result, "FAILED") ||
		strings.Contains(result, "FAIL") || strings.Contains(result, "error")

	if passed && !failed {
		return "[FIC] Tests passed! Implementation verification gate satisfied."
	}
	if failed {
		return "[FIC] Tests failed. Review failures before continuing."
	}
	return ""
}

// featureReminder lists in-progress checklist entries after a green
// test run, when completing them is most likely on the agent's mind.
func featureReminder(workDir string) string {
	active, err := features.InProgress(workDir)
	if err != nil || len(active) == 0 {
		return ""
	}

	names := make([]string, 0, 3)
	for i, f := range active {
		if i >= 3 {
			break
		}
		names = append(names, f.ID)
	}
	return fmt.Sprintf("[FIC] Features in progress: %s. Mark finished work with `phasegate features done <id>`.",
		strings.Join(names, ", "))
}
