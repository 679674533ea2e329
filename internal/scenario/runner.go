package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/gate"
	"github.com/ppiankov/phasegate/internal/pathguard"
	"github.com/ppiankov/phasegate/internal/workflow"
)

// Run evaluates all cases in a scenario against a gate engine built from
// the scenario's fixtures. workDir is the boundary for path validation;
// cases are independent of each other and of any on-disk state.
func Run(s *Scenario, workDir string) *RunResult {
	cfg := config.Defaults()
	if s.Strictness != "" {
		cfg[config.KeyStrictness] = s.Strictness
	}

	initialized := true
	if s.Initialized != nil {
		initialized = *s.Initialized
	}

	engine := gate.New(
		config.Static{Cfg: cfg, Initialized: initialized},
		pathguard.Guard{},
		workflow.StaticOracle{S: &workflow.State{
			ResearchComplete: s.Workflow.ResearchComplete,
			PlanValidated:    s.Workflow.PlanValidated,
		}},
	)

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		res := engine.Evaluate(kindFor(c.Tool), workDir, gate.Context{FilePath: c.FilePath})
		actual := string(res.Verdict)
		expected := strings.ToLower(c.Expect)

		cr := CaseResult{
			Index:    i + 1,
			Tool:     c.Tool,
			FilePath: c.FilePath,
			Expected: expected,
			Actual:   actual,
			Reason:   res.Reason,
		}

		if actual == expected {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result
}

// kindFor accepts both host tool names (Edit, Write, Bash) and raw gate
// kinds (allow_edit, ...). Anything else passes through as an unmapped
// kind, which the engine allows by design.
func kindFor(tool string) gate.Kind {
	if k, ok := gate.KindForTool(tool); ok {
		return k
	}
	return gate.Kind(tool)
}

// LoadAndRun loads a scenario YAML file and runs it against workDir.
func LoadAndRun(path, workDir string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}

	result := Run(&s, workDir)
	result.File = path
	return result, nil
}
