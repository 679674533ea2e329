// Package hook implements the agent hook protocol: one JSON request on
// stdin, one JSON response on stdout, exit status always zero.
//
// A hook process is the last line between the agent and the filesystem,
// so the protocol layer is deliberately forgiving: oversized input is
// truncated, unparsable input degrades to an empty request, and every
// handler fault surfaces as a diagnostic message instead of a failure.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxInputSize caps one stdin read at 10MB.
const MaxInputSize = 10 * 1024 * 1024

// Permission decisions understood by the agent.
const (
	PermissionAllow = "allow"
	PermissionDeny  = "deny"
)

// Request is the JSON document the agent sends to a hook.
type Request struct {
	SessionID  string         `json:"session_id"`
	ToolName   string         `json:"tool_name"`
	ToolInput  map[string]any `json:"tool_input"`
	ToolResult string         `json:"tool_result,omitempty"`
}

// Response is the JSON document a hook sends back. The zero value
// serializes to an empty object, which means "no opinion".
type Response struct {
	SystemMessage string          `json:"systemMessage,omitempty"`
	Specific      *SpecificOutput `json:"hookSpecificOutput,omitempty"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
}

// SpecificOutput carries the permission decision for gating hooks.
type SpecificOutput struct {
	PermissionDecision string `json:"permissionDecision,omitempty"`
}

// ReadRequest parses one request from r, reading at most MaxInputSize
// bytes. Empty input is a valid empty request. A parse error returns
// the error alongside an empty request so callers can degrade instead
// of failing the hook.
func ReadRequest(r io.Reader) (*Request, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize))
	if err != nil {
		return &Request{}, fmt.Errorf("hook: read request: %w", err)
	}
	if len(data) == 0 {
		return &Request{}, nil
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return &Request{}, fmt.Errorf("hook: parse request: %w", err)
	}
	return &req, nil
}

// Write serializes the response to w.
func (resp *Response) Write(w io.Writer) error {
	if resp == nil {
		resp = &Response{}
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("hook: encode response: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Empty returns the no-opinion response.
func Empty() *Response {
	return &Response{}
}

// Message returns an informational response that does not block.
func Message(msg string) *Response {
	return &Response{SystemMessage: msg}
}

// Deny returns a blocking response with an explanation.
func Deny(msg string) *Response {
	return &Response{
		SystemMessage: msg,
		Specific:      &SpecificOutput{PermissionDecision: PermissionDeny},
	}
}

// Errorf returns a diagnostic response for an internal hook fault.
func Errorf(format string, args ...any) *Response {
	return &Response{
		SystemMessage: "[Harness] Hook error: " + fmt.Sprintf(format, args...),
	}
}

// FilePath returns tool_input.file_path for Edit and Write requests.
func (r *Request) FilePath() string {
	return r.inputString("file_path")
}

// Command returns tool_input.command for Bash requests.
func (r *Request) Command() string {
	return r.inputString("command")
}

// Prompt returns tool_input.prompt for user-prompt-submit requests.
func (r *Request) Prompt() string {
	return r.inputString("prompt")
}

// SubagentType returns tool_input.subagent_type for subagent requests.
func (r *Request) SubagentType() string {
	return r.inputString("subagent_type")
}

// Description returns tool_input.description for subagent requests.
func (r *Request) Description() string {
	return r.inputString("description")
}

// Output returns tool_input.output for subagent-stop requests.
func (r *Request) Output() string {
	return r.inputString("output")
}

// StopReason returns the stop reason for stop requests, accepting both
// the stopReason and reason spellings.
func (r *Request) StopReason() string {
	if v := r.inputString("stopReason"); v != "" {
		return v
	}
	return r.inputString("reason")
}

// Transcript returns whatever session transcript the agent attached,
// falling back to the tool result.
func (r *Request) Transcript() string {
	if v := r.inputString("transcript"); v != "" {
		return v
	}
	return r.ToolResult
}

func (r *Request) inputString(key string) string {
	if r.ToolInput == nil {
		return ""
	}
	s, _ := r.ToolInput[key].(string)
	return s
}
