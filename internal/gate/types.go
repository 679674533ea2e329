// Package gate decides whether a guarded agent action may proceed, given
// the configured strictness level and the current workflow phase. Verdicts
// are produced fresh per evaluation and never cached.
package gate

import "fmt"

// Kind identifies a guarded action.
type Kind string

const (
	KindEdit  Kind = "allow_edit"
	KindWrite Kind = "allow_write"
	KindBash  Kind = "allow_bash"
)

// KindForTool maps a host tool name to its gate kind. ok is false for
// tools this engine does not guard.
func KindForTool(tool string) (Kind, bool) {
	switch tool {
	case "Edit":
		return KindEdit, true
	case "Write":
		return KindWrite, true
	case "Bash":
		return KindBash, true
	}
	return "", false
}

// Verdict is the outcome of a gate evaluation.
type Verdict string

const (
	Allow Verdict = "allow"
	Warn  Verdict = "warn"
	Block Verdict = "block"
)

// Result pairs a verdict with its rationale. Suggestions are ordered
// remediation steps for the agent.
type Result struct {
	Verdict     Verdict
	Reason      string
	Suggestions []string
}

// Context carries the action-specific data for one evaluation.
type Context struct {
	// FilePath is the target of a file-modifying action. Empty when the
	// host supplied none; path validation is skipped in that case.
	FilePath string
	// Command is the shell command for KindBash evaluations.
	Command string
}

// FormatMessage renders a non-allow result for the agent transcript.
// Allow results render as the empty string.
func FormatMessage(r Result) string {
	if r.Verdict == Allow {
		return ""
	}

	msg := fmt.Sprintf("[FIC Gate] %s: %s", r.Verdict, r.Reason)
	if len(r.Suggestions) > 0 {
		msg += "\nSuggestions:"
		for _, s := range r.Suggestions {
			msg += fmt.Sprintf("\n  - %s", s)
		}
	}
	return msg
}
