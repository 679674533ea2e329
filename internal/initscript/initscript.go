// Package initscript runs the optional per-project setup script at
// session start.
package initscript

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// ScriptName is the setup script kept under <workDir>/.claude/.
const ScriptName = "init.sh"

// MaxScriptSize caps the script size; anything larger is refused.
const MaxScriptSize = 10000

// DefaultTimeout bounds script execution.
const DefaultTimeout = 60 * time.Second

// outputLimit caps how much script output is surfaced to the session.
const outputLimit = 500

// Result describes one script run attempt.
type Result struct {
	Executed bool
	Success  bool
	Output   string
	Detail   string
}

// Path returns the script location for a working directory.
func Path(workDir string) string {
	return filepath.Join(workDir, ".claude", ScriptName)
}

// Exists reports whether a setup script is present.
func Exists(workDir string) bool {
	info, err := os.Stat(Path(workDir))
	return err == nil && info.Mode().IsRegular()
}

// Run executes the script when present. Problems with the script itself
// (too large, not executable, non-zero exit) are reported in the Result,
// never as an error: a broken setup script must not break the session.
func Run(ctx context.Context, workDir string, timeout time.Duration) *Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	result := &Result{}
	scriptPath := Path(workDir)

	info, err := os.Stat(scriptPath)
	if err != nil {
		return result
	}
	if !info.Mode().IsRegular() {
		result.Executed = true
		result.Detail = "init.sh is not a regular file, skipping"
		return result
	}
	if info.Size() > MaxScriptSize {
		result.Executed = true
		result.Detail = fmt.Sprintf("init.sh too large (%d bytes, limit %d), skipping", info.Size(), MaxScriptSize)
		return result
	}
	if info.Mode()&0o111 == 0 {
		result.Executed = true
		result.Detail = "init.sh not executable (run: chmod +x .claude/init.sh)"
		return result
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", scriptPath)
	cmd.Dir = workDir
	output, err := cmd.CombinedOutput()
	result.Executed = true
	result.Output = truncate(string(output), outputLimit)

	if runCtx.Err() == context.DeadlineExceeded {
		result.Detail = "init.sh timed out after " + timeout.String()
		return result
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.Detail = fmt.Sprintf("init.sh exited with status %d", exitErr.ExitCode())
		} else {
			result.Detail = "init.sh failed: " + err.Error()
		}
		return result
	}

	result.Success = true
	return result
}

// Describe renders a Result as a hook message fragment.
func Describe(r *Result) string {
	if !r.Executed {
		return ""
	}
	if r.Success {
		if r.Output != "" {
			return "init.sh ran:\n" + r.Output
		}
		return "init.sh ran"
	}
	if r.Detail != "" {
		return "Warning: " + r.Detail
	}
	return "init.sh finished"
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...[truncated]"
}
