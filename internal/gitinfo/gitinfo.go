// Package gitinfo reads repository state through the git binary.
//
// Every call shells out with an argument vector (never a shell string)
// and a bounded context, and degrades to a zero value when git is
// missing, slow, or the directory is not a repository.
package gitinfo

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	probeTimeout = 5 * time.Second
	cmdTimeout   = 10 * time.Second
)

// codeExtensions marks the file types that count as code for
// modification checks.
var codeExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".rs": true, ".go": true, ".java": true, ".c": true, ".cpp": true,
	".h": true, ".hpp": true, ".cs": true, ".rb": true, ".swift": true,
	".kt": true, ".scala": true, ".php": true, ".vue": true, ".svelte": true,
}

func runGit(dir string, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	return strings.TrimSpace(string(out)), err
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(dir string) bool {
	_, err := runGit(dir, probeTimeout, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// Status returns `git status --short` output, empty when clean or on
// error.
func Status(dir string) string {
	out, err := runGit(dir, cmdTimeout, "status", "--short")
	if err != nil {
		return ""
	}
	return out
}

// HasUncommittedChanges reports whether the work tree is dirty.
func HasUncommittedChanges(dir string) bool {
	return Status(dir) != ""
}

// Log returns up to n recent commits, one line each.
func Log(dir string, n int) string {
	if n <= 0 {
		n = 10
	}
	out, err := runGit(dir, cmdTimeout, "log", fmt.Sprintf("-%d", n), "--oneline", "--no-decorate")
	if err != nil {
		return ""
	}
	return out
}

// ModifiedFiles returns changed tracked files plus untracked files.
func ModifiedFiles(dir string) []string {
	var files []string

	if out, err := runGit(dir, cmdTimeout, "diff", "--name-only", "HEAD"); err == nil && out != "" {
		files = append(files, strings.Split(out, "\n")...)
	}
	if out, err := runGit(dir, cmdTimeout, "ls-files", "--others", "--exclude-standard"); err == nil && out != "" {
		files = append(files, strings.Split(out, "\n")...)
	}

	return files
}

// CodeWasModified reports whether any changed file looks like code.
func CodeWasModified(dir string) bool {
	for _, f := range ModifiedFiles(dir) {
		if codeExtensions[strings.ToLower(filepath.Ext(f))] {
			return true
		}
	}
	return false
}

// FileModified reports whether one specific file has pending changes.
func FileModified(dir, name string) bool {
	// "--" keeps the name from being read as an option.
	out, err := runGit(dir, probeTimeout, "status", "--porcelain", "--", name)
	if err != nil {
		return false
	}
	return out != ""
}
