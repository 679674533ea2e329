package hook

import (
	"os"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/gate"
	"github.com/ppiankov/phasegate/internal/journal"
	"github.com/ppiankov/phasegate/internal/pathguard"
)

// Hook events handled by the adapter.
const (
	EventPreToolUse       = "pre-tool-use"
	EventPostToolUse      = "post-tool-use"
	EventSessionStart     = "session-start"
	EventStop             = "stop"
	EventSubagentStop     = "subagent-stop"
	EventUserPromptSubmit = "user-prompt-submit"
	EventPreCompact       = "pre-compact"
)

// WorkDirEnv overrides work directory resolution for hook processes.
const WorkDirEnv = "CLAUDE_WORKING_DIRECTORY"

// WorkDir resolves the directory a hook operates on: the override
// variable when set, else the process working directory. Empty means no
// usable directory, and every hook then answers with no opinion.
func WorkDir() string {
	if dir := os.Getenv(WorkDirEnv); dir != "" {
		return dir
	}
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return dir
}

// Env is the capability set one hook invocation runs with. Each
// capability has one production and one inert implementation, selected
// here at composition time rather than checked at every decision site.
type Env struct {
	WorkDir     string
	Cfg         config.Config
	Initialized bool

	// Enforcing is false when the marker is absent or the relaxed
	// level is active; the inert capabilities are installed then.
	Enforcing bool

	Gate    gate.Evaluator
	Journal journal.Recorder
}

// NewEnv composes the production environment for one hook process.
func NewEnv(workDir string) Env {
	env := Env{
		WorkDir: workDir,
		Gate:    gate.Permissive{},
		Journal: journal.Discard{},
	}
	if workDir == "" {
		env.Cfg = config.Defaults()
		return env
	}

	store := config.Default()
	env.Cfg = store.Load(workDir, false)
	env.Initialized = store.IsInitialized(workDir)
	if !env.Initialized || env.Cfg.IsRelaxed() {
		return env
	}

	env.Enforcing = true
	env.Gate = gate.NewDefault()
	env.Journal = journal.FileRecorder{WorkDir: workDir}
	return env
}

// Handle dispatches one request to its event handler. Unknown events
// and handler panics both degrade: the agent must never be blocked by a
// harness fault.
func Handle(event string, env Env, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Errorf("%s: %v", event, r)
		}
	}()

	if req == nil {
		req = &Request{}
	}

	switch event {
	case EventPreToolUse:
		return PreToolUse(env, req)
	case EventPostToolUse:
		return PostToolUse(env, req)
	case EventSessionStart:
		return SessionStart(env, req)
	case EventStop:
		return Stop(env, req)
	case EventSubagentStop:
		return SubagentStop(env, req)
	case EventUserPromptSubmit:
		return UserPromptSubmit(env, req)
	case EventPreCompact:
		return PreCompact(env, req)
	default:
		return Empty()
	}
}

// sessionID returns a safe session identifier for state files, falling
// back to "default" when the request carries none or an invalid one.
func sessionID(req *Request) string {
	id := req.SessionID
	if id == "" {
		return "default"
	}
	if err := pathguard.ValidateSessionID(id); err != nil {
		return "default"
	}
	return id
}
