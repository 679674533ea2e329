package gate

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/pathguard"
	"github.com/ppiankov/phasegate/internal/workflow"
)

func providerAt(strictness string) config.Provider {
	cfg := config.Defaults()
	cfg[config.KeyStrictness] = strictness
	return config.Static{Cfg: cfg, Initialized: true}
}

func freshState() workflow.Oracle {
	return workflow.StaticOracle{S: &workflow.State{Phase: workflow.PhaseResearch}}
}

func plannedState() workflow.Oracle {
	return workflow.StaticOracle{S: &workflow.State{Phase: workflow.PhasePlanning, ResearchComplete: true}}
}

func readyState() workflow.Oracle {
	return workflow.StaticOracle{S: &workflow.State{
		Phase:            workflow.PhaseImplementation,
		ResearchComplete: true,
		PlanValidated:    true,
	}}
}

func TestUninitializedAlwaysAllows(t *testing.T) {
	// No marker: every evaluation allows with no message, regardless of
	// configuration content or how hostile the path looks.
	cfg := config.Defaults()
	cfg[config.KeyStrictness] = config.StrictnessStrict
	e := New(config.Static{Cfg: cfg, Initialized: false}, pathguard.Guard{}, freshState())

	for _, kind := range []Kind{KindEdit, KindWrite, KindBash, Kind("allow_anything")} {
		r := e.Evaluate(kind, t.TempDir(), Context{FilePath: "../../etc/passwd"})
		if r.Verdict != Allow {
			t.Errorf("kind %s: expected allow when uninitialized, got %s", kind, r.Verdict)
		}
		if r.Reason != "" {
			t.Errorf("kind %s: expected no message, got %q", kind, r.Reason)
		}
	}
}

func TestGatesDisabledAllows(t *testing.T) {
	cfg := config.Defaults()
	cfg[config.KeyFICEnabled] = false
	cfg[config.KeyStrictness] = config.StrictnessStrict
	e := New(config.Static{Cfg: cfg, Initialized: true}, pathguard.Guard{}, freshState())

	r := e.Evaluate(KindEdit, t.TempDir(), Context{FilePath: "main.go"})
	if r.Verdict != Allow {
		t.Errorf("expected allow with gates disabled, got %s", r.Verdict)
	}
}

func TestRelaxedSkipsPathValidation(t *testing.T) {
	// The relaxed fast path performs no checks at all: even an escaping
	// path sails through.
	e := New(providerAt(config.StrictnessRelaxed), pathguard.Guard{}, freshState())

	r := e.Evaluate(KindEdit, t.TempDir(), Context{FilePath: "../../etc/passwd"})
	if r.Verdict != Allow {
		t.Errorf("expected relaxed mode to skip validation, got %s: %s", r.Verdict, r.Reason)
	}
}

func TestTraversalPathBlocksInStandard(t *testing.T) {
	// Path failures block regardless of mode; standard softening does not
	// downgrade them to warnings.
	e := New(providerAt(config.StrictnessStandard), pathguard.Guard{}, readyState())

	r := e.Evaluate(KindEdit, t.TempDir(), Context{FilePath: "../escape.txt"})
	if r.Verdict != Block {
		t.Errorf("expected block for traversal path, got %s", r.Verdict)
	}
	if !strings.Contains(r.Reason, "unsafe path") {
		t.Errorf("expected unsafe path reason, got %q", r.Reason)
	}
}

func TestEscapingPathBlocksInStrictDespitePermittedPhase(t *testing.T) {
	e := New(providerAt(config.StrictnessStrict), pathguard.Guard{}, readyState())

	outside := filepath.Join(t.TempDir(), "elsewhere.txt")
	r := e.Evaluate(KindWrite, t.TempDir(), Context{FilePath: outside})
	if r.Verdict != Block {
		t.Errorf("expected block for boundary escape, got %s", r.Verdict)
	}
}

func TestValidPathInPermittedPhaseAllows(t *testing.T) {
	e := New(providerAt(config.StrictnessStrict), pathguard.Guard{}, readyState())

	r := e.Evaluate(KindEdit, t.TempDir(), Context{FilePath: "src/main.go"})
	if r.Verdict != Allow {
		t.Errorf("expected allow, got %s: %s", r.Verdict, r.Reason)
	}
}

func TestModeMonotonicity(t *testing.T) {
	// The same violating input yields allow, warn, block as the level
	// tightens.
	cases := []struct {
		strictness string
		want       Verdict
	}{
		{config.StrictnessRelaxed, Allow},
		{config.StrictnessStandard, Warn},
		{config.StrictnessStrict, Block},
	}
	for _, tc := range cases {
		t.Run(tc.strictness, func(t *testing.T) {
			e := New(providerAt(tc.strictness), pathguard.Guard{}, freshState())
			r := e.Evaluate(KindEdit, t.TempDir(), Context{FilePath: "main.go"})
			if r.Verdict != tc.want {
				t.Errorf("expected %s, got %s", tc.want, r.Verdict)
			}
		})
	}
}

func TestResearchViolationMessage(t *testing.T) {
	e := New(providerAt(config.StrictnessStandard), pathguard.Guard{}, freshState())

	r := e.Evaluate(KindWrite, t.TempDir(), Context{FilePath: "new.go"})
	if r.Verdict != Warn {
		t.Fatalf("expected warn, got %s", r.Verdict)
	}
	if r.Reason != "Research phase not complete" {
		t.Errorf("unexpected reason %q", r.Reason)
	}
	if len(r.Suggestions) != 2 {
		t.Fatalf("expected two suggestions, got %d", len(r.Suggestions))
	}
	if !strings.Contains(r.Suggestions[1], "/fic-research-done") {
		t.Errorf("expected research-done suggestion, got %q", r.Suggestions[1])
	}
}

func TestPlanningViolationAfterResearch(t *testing.T) {
	e := New(providerAt(config.StrictnessStrict), pathguard.Guard{}, plannedState())

	r := e.Evaluate(KindEdit, t.TempDir(), Context{FilePath: "main.go"})
	if r.Verdict != Block {
		t.Fatalf("expected block, got %s", r.Verdict)
	}
	if r.Reason != "Planning phase not complete" {
		t.Errorf("unexpected reason %q", r.Reason)
	}
	if !strings.Contains(r.Suggestions[1], "/fic-plan-done") {
		t.Errorf("expected plan-done suggestion, got %q", r.Suggestions[1])
	}
}

func TestBashNotPhaseGated(t *testing.T) {
	e := New(providerAt(config.StrictnessStrict), pathguard.Guard{}, freshState())

	r := e.Evaluate(KindBash, t.TempDir(), Context{Command: "go test ./..."})
	if r.Verdict != Allow {
		t.Errorf("expected bash to pass in research phase, got %s", r.Verdict)
	}
}

func TestUnknownKindFailsOpen(t *testing.T) {
	e := New(providerAt(config.StrictnessStrict), pathguard.Guard{}, freshState())

	r := e.Evaluate(Kind("allow_deploy"), t.TempDir(), Context{})
	if r.Verdict != Allow {
		t.Errorf("expected unknown kind to allow, got %s", r.Verdict)
	}
}

func TestEmptyFilePathSkipsValidation(t *testing.T) {
	e := New(providerAt(config.StrictnessStrict), pathguard.Guard{}, readyState())

	r := e.Evaluate(KindEdit, t.TempDir(), Context{})
	if r.Verdict != Allow {
		t.Errorf("expected allow with no path supplied, got %s: %s", r.Verdict, r.Reason)
	}
}

type failingOracle struct{}

func (failingOracle) State(string) (*workflow.State, error) {
	return nil, errors.New("state unavailable")
}

func TestOracleErrorAllowsWithDiagnostic(t *testing.T) {
	e := New(providerAt(config.StrictnessStrict), pathguard.Guard{}, failingOracle{})

	r := e.Evaluate(KindEdit, t.TempDir(), Context{FilePath: "main.go"})
	if r.Verdict != Allow {
		t.Errorf("expected allow on oracle failure, got %s", r.Verdict)
	}
	if !strings.Contains(r.Reason, "workflow state") {
		t.Errorf("expected diagnostic reason, got %q", r.Reason)
	}
}

type panickingOracle struct{}

func (panickingOracle) State(string) (*workflow.State, error) {
	panic("oracle exploded")
}

func TestInternalFaultConvertsToAllow(t *testing.T) {
	e := New(providerAt(config.StrictnessStrict), pathguard.Guard{}, panickingOracle{})

	r := e.Evaluate(KindEdit, t.TempDir(), Context{FilePath: "main.go"})
	if r.Verdict != Allow {
		t.Errorf("expected fault to convert to allow, got %s", r.Verdict)
	}
	if !strings.Contains(r.Reason, "gate evaluation fault") {
		t.Errorf("expected fault diagnostic, got %q", r.Reason)
	}
}

func TestPermissiveEvaluator(t *testing.T) {
	var ev Evaluator = Permissive{}
	r := ev.Evaluate(KindEdit, "/anywhere", Context{FilePath: "../../x"})
	if r.Verdict != Allow {
		t.Errorf("expected permissive allow, got %s", r.Verdict)
	}
}

func TestKindForTool(t *testing.T) {
	cases := []struct {
		tool string
		kind Kind
		ok   bool
	}{
		{"Edit", KindEdit, true},
		{"Write", KindWrite, true},
		{"Bash", KindBash, true},
		{"Read", "", false},
		{"WebFetch", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		kind, ok := KindForTool(tc.tool)
		if kind != tc.kind || ok != tc.ok {
			t.Errorf("KindForTool(%q) = %s, %v; expected %s, %v", tc.tool, kind, ok, tc.kind, tc.ok)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	r := Result{
		Verdict:     Warn,
		Reason:      "Research phase not complete",
		Suggestions: []string{"first", "second"},
	}
	got := FormatMessage(r)
	want := "[FIC Gate] warn: Research phase not complete\nSuggestions:\n  - first\n  - second"
	if got != want {
		t.Errorf("unexpected message:\ngot:  %q\nwant: %q", got, want)
	}

	if FormatMessage(Result{Verdict: Allow}) != "" {
		t.Error("expected empty message for allow")
	}
}

func BenchmarkEvaluateAllow(b *testing.B) {
	e := New(providerAt(config.StrictnessStandard), pathguard.AllowAll{}, readyState())
	dir := b.TempDir()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Evaluate(KindEdit, dir, Context{FilePath: "src/main.go"})
	}
}
