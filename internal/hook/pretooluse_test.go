package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/journal"
	"github.com/ppiankov/phasegate/internal/workflow"
)

// initProject creates an initialized working directory at the given
// strictness. The workflow state starts at the research phase.
func initProject(t *testing.T, strictness string) string {
	t.Helper()
	dir := t.TempDir()
	claudeDir := filepath.Join(dir, ".claude")
	if err := os.MkdirAll(claudeDir, 0o700); err != nil {
		t.Fatal(err)
	}
	cfg := fmt.Sprintf("{\n  \"strictness\": %q\n}\n", strictness)
	if err := os.WriteFile(filepath.Join(claudeDir, config.ConfigFileName), []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(claudeDir, config.InitMarkerFileName), []byte("initialized\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func advanceToImplementation(t *testing.T, dir string) {
	t.Helper()
	if _, err := workflow.MarkResearchDone(dir, 0.9); err != nil {
		t.Fatal(err)
	}
	if _, err := workflow.MarkPlanValidated(dir); err != nil {
		t.Fatal(err)
	}
}

func editRequest(dir, file string) *Request {
	return &Request{
		SessionID: "s-1",
		ToolName:  "Edit",
		ToolInput: map[string]any{"file_path": filepath.Join(dir, file)},
	}
}

func TestPreToolUseUninitializedProject(t *testing.T) {
	dir := t.TempDir()
	env := NewEnv(dir)

	resp := PreToolUse(env, &Request{
		ToolName:  "Edit",
		ToolInput: map[string]any{"file_path": "../../etc/passwd"},
	})

	if resp.SystemMessage != "" || resp.Specific != nil {
		t.Errorf("uninitialized project must produce no opinion, got %+v", resp)
	}
}

func TestPreToolUseRelaxedLevel(t *testing.T) {
	dir := initProject(t, config.StrictnessRelaxed)
	env := NewEnv(dir)

	if env.Enforcing {
		t.Error("relaxed level must compose the inert capabilities")
	}

	resp := PreToolUse(env, &Request{
		ToolName:  "Edit",
		ToolInput: map[string]any{"file_path": "/etc/passwd"},
	})
	if resp.SystemMessage != "" || resp.Specific != nil {
		t.Errorf("relaxed level must produce no opinion, got %+v", resp)
	}
}

func TestPreToolUseWarnsInStandard(t *testing.T) {
	dir := initProject(t, config.StrictnessStandard)
	env := NewEnv(dir)

	resp := PreToolUse(env, editRequest(dir, "main.go"))

	if resp.Specific != nil {
		t.Fatalf("standard mode must not deny a phase violation, got %+v", resp.Specific)
	}
	if !strings.Contains(resp.SystemMessage, "[FIC Gate] warn: Research phase not complete") {
		t.Errorf("unexpected message %q", resp.SystemMessage)
	}
	if !strings.Contains(resp.SystemMessage, "Use /fic-research-done when research is complete") {
		t.Errorf("expected suggestions in message, got %q", resp.SystemMessage)
	}
}

func TestPreToolUseBlocksInStrict(t *testing.T) {
	dir := initProject(t, config.StrictnessStrict)
	env := NewEnv(dir)

	resp := PreToolUse(env, editRequest(dir, "main.go"))

	if resp.Specific == nil || resp.Specific.PermissionDecision != PermissionDeny {
		t.Fatalf("strict mode must deny, got %+v", resp)
	}
	if !strings.Contains(resp.SystemMessage, "[FIC Gate] block: Research phase not complete") {
		t.Errorf("unexpected message %q", resp.SystemMessage)
	}
	if !strings.Contains(resp.SystemMessage, "[FIC Gate: Operation blocked. Complete prior phase first.]") {
		t.Errorf("expected block trailer, got %q", resp.SystemMessage)
	}
}

func TestPreToolUseUnsafePathBlocksInStandard(t *testing.T) {
	dir := initProject(t, config.StrictnessStandard)
	advanceToImplementation(t, dir)
	env := NewEnv(dir)

	resp := PreToolUse(env, &Request{
		ToolName:  "Edit",
		ToolInput: map[string]any{"file_path": filepath.Join(dir, "../outside.go")},
	})

	if resp.Specific == nil || resp.Specific.PermissionDecision != PermissionDeny {
		t.Fatalf("path escape must deny even in standard mode, got %+v", resp)
	}
	if !strings.Contains(resp.SystemMessage, "unsafe path") {
		t.Errorf("unexpected message %q", resp.SystemMessage)
	}
}

func TestPreToolUseAllowsInImplementation(t *testing.T) {
	dir := initProject(t, config.StrictnessStrict)
	advanceToImplementation(t, dir)
	env := NewEnv(dir)

	resp := PreToolUse(env, editRequest(dir, "main.go"))

	if resp.SystemMessage != "" || resp.Specific != nil {
		t.Errorf("implementation phase edit should pass silently, got %+v", resp)
	}
}

func TestPreToolUseIgnoresUngatedTools(t *testing.T) {
	dir := initProject(t, config.StrictnessStrict)
	env := NewEnv(dir)

	for _, tool := range []string{"Bash", "Read", "Grep", "Task", ""} {
		resp := PreToolUse(env, &Request{ToolName: tool})
		if resp.SystemMessage != "" || resp.Specific != nil {
			t.Errorf("%q should not be gated, got %+v", tool, resp)
		}
	}
}

func TestPreToolUseGatesDisabled(t *testing.T) {
	dir := initProject(t, config.StrictnessStrict)
	cfgPath := filepath.Join(dir, ".claude", config.ConfigFileName)
	body := "{\n  \"strictness\": \"strict\",\n  \"fic_enabled\": false\n}\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	config.ClearCache(dir)
	env := NewEnv(dir)

	resp := PreToolUse(env, editRequest(dir, "main.go"))
	if resp.SystemMessage != "" || resp.Specific != nil {
		t.Errorf("disabled gates must produce no opinion, got %+v", resp)
	}
}

func TestPreToolUseJournalsDecision(t *testing.T) {
	dir := initProject(t, config.StrictnessStrict)
	env := NewEnv(dir)

	PreToolUse(env, editRequest(dir, "main.go"))

	j, err := journal.Open(dir)
	if err != nil {
		t.Fatalf("journal did not open: %v", err)
	}
	defer j.Close()

	entries, err := j.Recent(1)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one journaled decision, got %v (err %v)", entries, err)
	}
	e := entries[0]
	if e.Verdict != "block" || e.Kind != "allow_edit" || e.Mode != "strict" {
		t.Errorf("unexpected journal entry %+v", e)
	}
	if e.SessionID != "s-1" || e.Phase != "research" {
		t.Errorf("unexpected journal context %+v", e)
	}
}

func TestPreToolUseJournalFailureDoesNotChangeVerdict(t *testing.T) {
	dir := initProject(t, config.StrictnessStrict)
	env := NewEnv(dir)
	env.Journal = failingRecorder{}

	resp := PreToolUse(env, editRequest(dir, "main.go"))
	if resp.Specific == nil || resp.Specific.PermissionDecision != PermissionDeny {
		t.Errorf("verdict must survive journal failure, got %+v", resp)
	}
}

type failingRecorder struct{}

func (failingRecorder) Record(journal.Entry) error {
	return fmt.Errorf("disk full")
}

func TestHandleUnknownEvent(t *testing.T) {
	env := NewEnv(t.TempDir())
	resp := Handle("session-end", env, &Request{})
	if resp.SystemMessage != "" || resp.Specific != nil {
		t.Errorf("unknown events must produce no opinion, got %+v", resp)
	}
}

func TestHandleNilRequest(t *testing.T) {
	env := NewEnv(t.TempDir())
	resp := Handle(EventPreToolUse, env, nil)
	if resp == nil {
		t.Fatal("Handle must always return a response")
	}
}

func TestHandleDispatchesPreToolUse(t *testing.T) {
	dir := initProject(t, config.StrictnessStrict)
	env := NewEnv(dir)

	resp := Handle(EventPreToolUse, env, editRequest(dir, "main.go"))
	if resp.Specific == nil || resp.Specific.PermissionDecision != PermissionDeny {
		t.Errorf("dispatch did not reach the gate, got %+v", resp)
	}
}

func TestSessionIDFallsBackToDefault(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "default"},
		{"session-123", "session-123"},
		{"../escape", "default"},
		{"has/slash", "default"},
		{strings.Repeat("x", 200), "default"},
	}

	for _, tc := range cases {
		if got := sessionID(&Request{SessionID: tc.in}); got != tc.want {
			t.Errorf("sessionID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
