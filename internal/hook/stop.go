package hook

import (
	"strings"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/features"
	"github.com/ppiankov/phasegate/internal/gitinfo"
	"github.com/ppiankov/phasegate/internal/progress"
	"github.com/ppiankov/phasegate/internal/testrunner"
)

// Stop validates session stop conditions. Strict mode can hold the
// session open over unverified work; standard mode reminds; relaxed
// mode gives at most one FYI line.
func Stop(env Env, req *Request) *Response {
	if !env.Initialized {
		return Empty()
	}

	// Only normal stops are validated; errors and interrupts pass.
	switch req.StopReason() {
	case "end_turn", "stop_sequence", "", "unknown":
	default:
		return Empty()
	}

	blocking, warnings := stopFindings(env, req.Transcript())

	if env.Cfg.IsStrict() {
		return strictStop(blocking, warnings)
	}
	if env.Cfg.IsRelaxed() {
		return relaxedStop(blocking, warnings)
	}
	return standardStop(blocking, warnings)
}

func stopFindings(env Env, transcript string) (blocking, warnings []string) {
	codeModified := gitinfo.CodeWasModified(env.WorkDir)

	if codeModified && !testrunner.DidTestsRun(transcript) {
		blocking = append(blocking, "Code was modified but tests were not run")
	}

	if env.Cfg.Bool(config.KeyAutoCheckpointSuggestions) && gitinfo.HasUncommittedChanges(env.WorkDir) {
		warnings = append(warnings, "Uncommitted changes exist - consider creating a checkpoint")
	}

	if env.Cfg.Bool(config.KeyFeatureEnforcement) && features.Exists(env.WorkDir) {
		if active, err := features.InProgress(env.WorkDir); err == nil && len(active) > 0 {
			names := make([]string, 0, 3)
			for i, f := range active {
				if i >= 3 {
					break
				}
				names = append(names, f.Name)
			}
			warnings = append(warnings, "Features still in progress: "+strings.Join(names, ", "))
		}
	}

	if codeModified && !gitinfo.FileModified(env.WorkDir, progress.FileName) {
		warnings = append(warnings, "Progress log not updated - consider logging your accomplishments")
	}

	return blocking, warnings
}

func strictStop(blocking, warnings []string) *Response {
	if len(blocking) > 0 {
		var parts []string
		parts = append(parts, "[Harness - STRICT MODE] Cannot stop due to:")
		for _, r := range blocking {
			parts = append(parts, "  ! "+r)
		}
		if len(warnings) > 0 {
			parts = append(parts, "", "Additional reminders:")
			for _, w := range warnings {
				parts = append(parts, "  - "+w)
			}
		}
		return Deny(strings.Join(parts, "\n"))
	}

	if len(warnings) > 0 {
		var b strings.Builder
		b.WriteString("[Harness] Approved to stop.\n\nReminders:\n")
		for _, w := range warnings {
			b.WriteString("  - " + w + "\n")
		}
		return Message(b.String())
	}
	return Empty()
}

func standardStop(blocking, warnings []string) *Response {
	var parts []string

	if len(blocking) > 0 {
		parts = append(parts, "[Harness] IMPORTANT - Before stopping:")
		for _, r := range blocking {
			parts = append(parts, "  ! "+r)
		}
		parts = append(parts, "")
	}

	if len(warnings) > 0 {
		if len(parts) == 0 {
			parts = append(parts, "[Harness] Reminders before stopping:")
		} else {
			parts = append(parts, "Additional reminders:")
		}
		for _, w := range warnings {
			parts = append(parts, "  - "+w)
		}
	}

	if len(parts) > 0 {
		return Message(strings.Join(parts, "\n"))
	}
	return Empty()
}

func relaxedStop(blocking, warnings []string) *Response {
	all := append(blocking, warnings...)
	if len(all) > 0 {
		return Message("[Harness] FYI: " + all[0])
	}
	return Empty()
}
