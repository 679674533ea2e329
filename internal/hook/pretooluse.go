package hook

import (
	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/gate"
	"github.com/ppiankov/phasegate/internal/journal"
	"github.com/ppiankov/phasegate/internal/workflow"
)

// blockTrailer is appended to every denial so the agent knows the next
// step even when the reason text is lost in its context.
const blockTrailer = "\n\n[FIC Gate: Operation blocked. Complete prior phase first.]"

// PreToolUse gates file modifications before they happen.
//
// Decision flow:
//  1. Not enforcing (no marker, relaxed level, or no work directory):
//     no opinion, nothing is validated or journaled.
//  2. Tools other than Edit and Write: no opinion. Bash is observed by
//     the post hook but never phase-gated here.
//  3. Workflow gating off: no opinion.
//  4. Otherwise the gate engine decides; block maps to a permission
//     denial, warn to an advisory message.
func PreToolUse(env Env, req *Request) *Response {
	if !env.Enforcing {
		return Empty()
	}

	kind, ok := gate.KindForTool(req.ToolName)
	if !ok || kind == gate.KindBash {
		return Empty()
	}

	if !env.Cfg.Bool(config.KeyFICEnabled) {
		return Empty()
	}

	res := env.Gate.Evaluate(kind, env.WorkDir, gate.Context{
		FilePath: req.FilePath(),
		Command:  req.Command(),
	})
	recordDecision(env, req, kind, res)

	switch res.Verdict {
	case gate.Block:
		return Deny(gate.FormatMessage(res) + blockTrailer)
	case gate.Warn:
		if msg := gate.FormatMessage(res); msg != "" {
			return Message(msg)
		}
		return Empty()
	default:
		return Empty()
	}
}

// recordDecision journals one verdict. Journal trouble is swallowed:
// the audit trail must never change the decision.
func recordDecision(env Env, req *Request, kind gate.Kind, res gate.Result) {
	phase := ""
	if state, err := workflow.Load(env.WorkDir); err == nil {
		phase = string(state.CurrentPhase())
	}

	_ = env.Journal.Record(journal.Entry{
		SessionID: sessionID(req),
		Tool:      req.ToolName,
		Path:      req.FilePath(),
		Kind:      string(kind),
		Verdict:   string(res.Verdict),
		Reason:    res.Reason,
		Mode:      env.Cfg.Strictness(),
		Phase:     phase,
	})
}
