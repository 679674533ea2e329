package phasegate

import (
	"fmt"

	"github.com/ppiankov/phasegate/internal/gate"
)

// Verdict is the gate evaluation outcome.
type Verdict string

const (
	Allow Verdict = Verdict(gate.Allow)
	Warn  Verdict = Verdict(gate.Warn)
	Block Verdict = Verdict(gate.Block)
)

// Action describes what a tool intends to do.
type Action struct {
	Tool     string // host tool name: "Edit", "Write", "Bash"
	FilePath string // target path for file-modifying tools
}

// Result is a gate evaluation outcome.
type Result struct {
	Verdict     Verdict
	Reason      string
	Suggestions []string
}

// Allowed reports whether the verdict permits the action. Warnings
// permit; only Block stops the call.
func (r Result) Allowed() bool {
	return r.Verdict != Block
}

// Message renders the verdict for an agent transcript. Allow renders
// as the empty string.
func (r Result) Message() string {
	return gate.FormatMessage(gate.Result{
		Verdict:     gate.Verdict(r.Verdict),
		Reason:      r.Reason,
		Suggestions: r.Suggestions,
	})
}

// BlockedError is returned when a gate blocks an action.
type BlockedError struct {
	Action Action
	Result Result
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("phasegate blocked %s: %s", e.Action.Tool, e.Result.Reason)
}

// toResult maps an internal gate result to an SDK Result.
func toResult(res gate.Result) Result {
	return Result{
		Verdict:     Verdict(res.Verdict),
		Reason:      res.Reason,
		Suggestions: res.Suggestions,
	}
}
