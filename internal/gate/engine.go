package gate

import (
	"fmt"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/pathguard"
	"github.com/ppiankov/phasegate/internal/workflow"
)

// Evaluator is the gate capability the hook pipeline, CLI, and MCP server
// call. Engine is the production implementation; Permissive is the inert
// one, selected at composition time when enforcement is off.
type Evaluator interface {
	Evaluate(kind Kind, workDir string, ctx Context) Result
}

// Permissive allows every action without inspection.
type Permissive struct{}

func (Permissive) Evaluate(Kind, string, Context) Result {
	return Result{Verdict: Allow}
}

// Engine evaluates gates against configuration, path safety, and workflow
// phase. It holds no per-evaluation state and is safe for concurrent use.
type Engine struct {
	cfg    config.Provider
	paths  pathguard.Checker
	phases workflow.Oracle
}

// New wires an Engine from explicit capabilities.
func New(cfg config.Provider, paths pathguard.Checker, phases workflow.Oracle) *Engine {
	return &Engine{cfg: cfg, paths: paths, phases: phases}
}

// NewDefault wires the production capabilities: the process-wide config
// store, the real path guard, and the on-disk phase oracle.
func NewDefault() *Engine {
	return New(config.Default(), pathguard.Guard{}, workflow.FileOracle{})
}

// Evaluate decides whether a guarded action may proceed in workDir.
//
// Decision order (must not be changed):
//  1. Fast path — gates disabled, harness uninitialized, or relaxed mode:
//     allow unconditionally, no further checks, path validation included.
//  2. Path validation — a malformed or boundary-escaping target blocks in
//     every mode; softening never applies.
//  3. Phase check — edit and write require research complete, then a
//     validated plan; bash is not phase-gated; unmapped kinds allow
//     (fail open for actions this engine was not designed to judge).
//  4. Violations soften by mode: warn at standard, block at strict.
//
// Any internal fault converts to an allow verdict with a diagnostic
// reason. The gate never takes down the host pipeline.
func (e *Engine) Evaluate(kind Kind, workDir string, ctx Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Verdict: Allow, Reason: fmt.Sprintf("gate evaluation fault: %v", r)}
		}
	}()

	cfg := e.cfg.Load(workDir, false)

	// Step 1: explicit fast path, not a degenerate case of the policy
	// below.
	if !cfg.Bool(config.KeyFICEnabled) || !e.cfg.IsInitialized(workDir) || cfg.IsRelaxed() {
		return Result{Verdict: Allow}
	}

	// Step 2: path validation.
	if ctx.FilePath != "" {
		r := e.paths.Validate(ctx.FilePath, pathguard.Options{Boundary: workDir})
		if !r.Valid {
			return Result{
				Verdict: Block,
				Reason:  fmt.Sprintf("unsafe path: %s", r.Detail),
			}
		}
	}

	// Step 3: phase check against the read-only oracle.
	state, err := e.phases.State(workDir)
	if err != nil {
		return Result{Verdict: Allow, Reason: fmt.Sprintf("could not load workflow state: %v", err)}
	}

	switch kind {
	case KindEdit, KindWrite:
		return editWriteVerdict(state, cfg)
	case KindBash:
		// Shell commands pass in every phase; command sandboxing is a
		// separate concern this engine does not own.
		return Result{Verdict: Allow}
	default:
		return Result{Verdict: Allow}
	}
}

func editWriteVerdict(state *workflow.State, cfg config.Config) Result {
	if !state.ResearchComplete {
		return violation(cfg, "Research phase not complete", []string{
			"Complete research using Read, Grep, Glob, Task tools first",
			"Use /fic-research-done when research is complete",
		})
	}
	if !state.PlanValidated {
		return violation(cfg, "Planning phase not complete", []string{
			"Create and validate your implementation plan",
			"Use /fic-plan-done when plan is validated",
		})
	}
	return Result{Verdict: Allow}
}

// violation applies step 4: strict blocks, standard warns. The relaxed
// level never reaches here.
func violation(cfg config.Config, reason string, suggestions []string) Result {
	v := Warn
	if cfg.IsStrict() {
		v = Block
	}
	return Result{Verdict: v, Reason: reason, Suggestions: suggestions}
}
