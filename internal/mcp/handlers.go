package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/gate"
	"github.com/ppiankov/phasegate/internal/workflow"
)

// --- Input/Output types ---

// GateCheckInput defines parameters for the gate_check tool.
type GateCheckInput struct {
	Tool     string `json:"tool" jsonschema:"tool name (Edit/Write/Bash)"`
	FilePath string `json:"file_path,omitempty" jsonschema:"target file path"`
}

// GateCheckOutput contains the dry-run verdict.
type GateCheckOutput struct {
	Verdict     string   `json:"verdict"`
	Reason      string   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// WorkflowStatusInput is empty: status takes no parameters.
type WorkflowStatusInput struct{}

// WorkflowStatusOutput reports the phase and enforcement context.
type WorkflowStatusOutput struct {
	Phase            string  `json:"phase"`
	ResearchComplete bool    `json:"research_complete"`
	PlanValidated    bool    `json:"plan_validated"`
	Confidence       float64 `json:"confidence,omitempty"`
	Strictness       string  `json:"strictness"`
	Initialized      bool    `json:"initialized"`
}

// ConfigGetInput defines parameters for the config_get tool.
type ConfigGetInput struct {
	Key string `json:"key,omitempty" jsonschema:"setting name, empty for the full configuration"`
}

// ConfigGetOutput carries the requested setting as JSON text.
type ConfigGetOutput struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

// ConfigSetInput defines parameters for the config_set tool.
type ConfigSetInput struct {
	Key   string `json:"key" jsonschema:"setting name"`
	Value string `json:"value" jsonschema:"new value, JSON or plain string"`
}

// ConfigSetOutput confirms the write.
type ConfigSetOutput struct {
	Key   string `json:"key"`
	Saved bool   `json:"saved"`
}

// --- Handlers ---

func (s *Server) handleGateCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input GateCheckInput) (*mcpsdk.CallToolResult, GateCheckOutput, error) {
	kind, ok := gate.KindForTool(input.Tool)
	if !ok {
		kind = gate.Kind(input.Tool)
	}

	res := s.engine.Evaluate(kind, s.workDir, gate.Context{FilePath: input.FilePath})

	out := GateCheckOutput{
		Verdict:     string(res.Verdict),
		Reason:      res.Reason,
		Suggestions: res.Suggestions,
		Message:     gate.FormatMessage(res),
	}
	return nil, out, nil
}

func (s *Server) handleWorkflowStatus(ctx context.Context, req *mcpsdk.CallToolRequest, input WorkflowStatusInput) (*mcpsdk.CallToolResult, WorkflowStatusOutput, error) {
	state, err := workflow.Load(s.workDir)
	if err != nil {
		return nil, WorkflowStatusOutput{}, fmt.Errorf("load workflow state: %w", err)
	}

	cfg := s.store.Load(s.workDir, false)
	out := WorkflowStatusOutput{
		Phase:            string(state.CurrentPhase()),
		ResearchComplete: state.ResearchComplete,
		PlanValidated:    state.PlanValidated,
		Confidence:       state.Confidence,
		Strictness:       cfg.Strictness(),
		Initialized:      s.store.IsInitialized(s.workDir),
	}
	return nil, out, nil
}

func (s *Server) handleConfigGet(ctx context.Context, req *mcpsdk.CallToolRequest, input ConfigGetInput) (*mcpsdk.CallToolResult, ConfigGetOutput, error) {
	cfg := s.store.Load(s.workDir, false)

	if input.Key == "" {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, ConfigGetOutput{}, fmt.Errorf("encode configuration: %w", err)
		}
		return nil, ConfigGetOutput{Value: string(data), Found: true}, nil
	}

	value, ok := cfg[input.Key]
	if !ok {
		return nil, ConfigGetOutput{Key: input.Key}, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, ConfigGetOutput{}, fmt.Errorf("encode setting %s: %w", input.Key, err)
	}
	return nil, ConfigGetOutput{Key: input.Key, Value: string(data), Found: true}, nil
}

func (s *Server) handleConfigSet(ctx context.Context, req *mcpsdk.CallToolRequest, input ConfigSetInput) (*mcpsdk.CallToolResult, ConfigSetOutput, error) {
	if input.Key == "" {
		return nil, ConfigSetOutput{}, fmt.Errorf("key is required")
	}

	saved := s.store.SetSetting(s.workDir, input.Key, config.ParseValue(input.Value))
	out := ConfigSetOutput{Key: input.Key, Saved: saved}
	if !saved {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}
