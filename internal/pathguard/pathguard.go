// Package pathguard validates untrusted file paths before the gate engine
// reasons about them. It rejects injection characters and traversal patterns
// up front, then confirms a candidate resolves inside the working-directory
// boundary after following symlinks.
package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Reason classifies why a path failed validation.
type Reason string

const (
	ReasonEmpty           Reason = "empty"
	ReasonDangerousChar   Reason = "dangerous-character"
	ReasonTraversal       Reason = "traversal"
	ReasonAbsoluteDenied  Reason = "absolute-not-allowed"
	ReasonEscapesBoundary Reason = "escapes-boundary"
	ReasonDoesNotExist    Reason = "does-not-exist"
	ReasonFilesystem      Reason = "filesystem-error"
)

// Result is the outcome of a validation. Immutable once returned.
// Resolved is only set when Valid is true.
type Result struct {
	Valid    bool
	Reason   Reason
	Detail   string
	Resolved string
}

// Options control a Validate call. The zero value permits absolute paths
// and does not require the path to exist, matching the common case of a
// file about to be created inside the working directory.
type Options struct {
	// Boundary, when set, is the directory the resolved path must stay
	// inside. Relative candidates are joined to it before resolution.
	Boundary string
	// MustExist requires the resolved path to exist on the filesystem.
	MustExist bool
	// DenyAbsolute rejects absolute candidates outright.
	DenyAbsolute bool
}

// dangerousChars are rejected anywhere in a raw path string before any
// other processing. NUL breaks C string handling downstream; CR/LF enable
// log and protocol injection.
const dangerousChars = "\x00\r\n"

// traversalPatterns match ".." at a path segment boundary for either
// separator style. A ".." embedded in a filename (e.g. "a..b") is fine.
var traversalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.\.[\\/]`),
	regexp.MustCompile(`[\\/]\.\.`),
	regexp.MustCompile(`^\.\.`),
}

func invalid(reason Reason, format string, args ...any) Result {
	return Result{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Validate checks a single untrusted path string.
//
// Check order (must not be changed):
//  1. Empty input
//  2. Dangerous characters (NUL, CR, LF) in the raw string
//  3. Traversal patterns (".." segments), before any resolution
//  4. Absolute-path restriction
//  5. Boundary containment after canonical resolution
//  6. Existence, when required
//
// Filesystem errors at any resolution step are reported as a validation
// failure, never propagated as a fault.
func Validate(path string, opts Options) Result {
	if path == "" {
		return invalid(ReasonEmpty, "path is empty")
	}

	if i := strings.IndexAny(path, dangerousChars); i >= 0 {
		return invalid(ReasonDangerousChar, "path contains dangerous character: %q", path[i])
	}

	for _, pat := range traversalPatterns {
		if pat.MatchString(path) {
			return invalid(ReasonTraversal, "path contains traversal pattern (../)")
		}
	}

	if opts.DenyAbsolute && filepath.IsAbs(path) {
		return invalid(ReasonAbsoluteDenied, "absolute paths not allowed")
	}

	if opts.Boundary == "" {
		// No boundary: canonicalize absolute candidates, leave relative
		// ones relative. Nothing further to check against.
		resolved := filepath.Clean(path)
		if filepath.IsAbs(path) {
			r, err := resolvePath(path)
			if err != nil {
				return invalid(ReasonFilesystem, "invalid path: %v", err)
			}
			resolved = r
		}
		if opts.MustExist {
			if r := checkExists(resolved, path); !r.Valid {
				return r
			}
		}
		return Result{Valid: true, Resolved: resolved}
	}

	base, err := resolvePath(opts.Boundary)
	if err != nil {
		return invalid(ReasonFilesystem, "invalid boundary: %v", err)
	}

	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(base, candidate)
	}
	resolved, err := resolvePath(candidate)
	if err != nil {
		return invalid(ReasonFilesystem, "invalid path: %v", err)
	}

	if !isWithin(base, resolved) {
		return invalid(ReasonEscapesBoundary, "path escapes working directory")
	}

	if opts.MustExist {
		if r := checkExists(resolved, path); !r.Valid {
			return r
		}
	}

	return Result{Valid: true, Resolved: resolved}
}

// SafeJoin joins untrusted components onto a trusted base directory.
// Any NUL byte in a component fails the whole join, and the resolved
// result must remain inside base.
func SafeJoin(base string, parts ...string) (string, error) {
	baseResolved, err := resolvePath(base)
	if err != nil {
		return "", fmt.Errorf("resolve base: %w", err)
	}

	joined := baseResolved
	for _, p := range parts {
		if strings.IndexByte(p, 0) >= 0 {
			return "", fmt.Errorf("component contains NUL byte")
		}
		joined = filepath.Join(joined, p)
	}

	resolved, err := resolvePath(joined)
	if err != nil {
		return "", fmt.Errorf("resolve join: %w", err)
	}
	if !isWithin(baseResolved, resolved) {
		return "", fmt.Errorf("join escapes base directory")
	}
	return resolved, nil
}

func checkExists(resolved, original string) Result {
	if _, err := os.Stat(resolved); err != nil {
		if os.IsNotExist(err) {
			return invalid(ReasonDoesNotExist, "path does not exist: %s", original)
		}
		return invalid(ReasonFilesystem, "invalid path: %v", err)
	}
	return Result{Valid: true, Resolved: resolved}
}

// resolvePath canonicalizes p: absolute, cleaned, symlinks followed. Paths
// that do not exist yet resolve through their deepest existing ancestor so
// a file about to be created still gets a canonical location.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	// Peel components until an existing ancestor resolves, then reattach.
	dir, rest := abs, ""
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent

		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
}

// isWithin reports whether path equals base or sits below it. Both
// arguments must already be canonical absolute paths. Paths on different
// volumes never share an ancestor and report false (conservative: treated
// as an escape, never as permitted).
func isWithin(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
