package scenario

// WorkflowState is the phase fixture a scenario runs against.
type WorkflowState struct {
	ResearchComplete bool `yaml:"research_complete"`
	PlanValidated    bool `yaml:"plan_validated"`
}

// Case is one gate assertion within a scenario.
type Case struct {
	Tool     string `yaml:"tool"`
	FilePath string `yaml:"file_path,omitempty"`
	Expect   string `yaml:"expect"`
}

// Scenario is a named collection of gate assertions evaluated against a
// fixed strictness level and workflow state.
type Scenario struct {
	Name        string        `yaml:"name"`
	Strictness  string        `yaml:"strictness,omitempty"`
	Initialized *bool         `yaml:"initialized,omitempty"`
	Workflow    WorkflowState `yaml:"workflow"`
	Cases       []Case        `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one assertion.
type CaseResult struct {
	Index    int    `json:"index"`
	Passed   bool   `json:"passed"`
	Tool     string `json:"tool"`
	FilePath string `json:"file_path,omitempty"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Reason   string `json:"reason,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
