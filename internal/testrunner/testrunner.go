// Package testrunner detects and runs a project's test suite.
//
// Detection walks well-known marker files and maps them to the
// test_commands table in the harness configuration, so a project can
// override the command per language without touching the harness.
package testrunner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/phasegate/internal/config"
)

// Result states for a test run.
const (
	ResultNotRun = "not_run"
	ResultPassed = "passed"
	ResultFailed = "failed"
	ResultError  = "error"
)

// DefaultTimeout bounds a baseline test run.
const DefaultTimeout = 120 * time.Second

// outputLimit caps the raw output carried in a Summary.
const outputLimit = 4000

// markers maps project marker files to test_commands keys, in detection
// priority order.
var markers = []struct {
	file string
	lang string
}{
	{"package.json", "node"},
	{"Cargo.toml", "rust"},
	{"go.mod", "go"},
	{"pyproject.toml", "python"},
	{"setup.py", "python"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
}

// Summary describes one test run.
type Summary struct {
	Command  string
	Result   string
	Passed   int
	Failed   int
	Skipped  int
	Total    int
	Output   string
	Duration time.Duration
}

// Detect returns the test command for a project, or nil when no marker
// file matches. A Makefile with a test target wins over nothing but
// loses to language markers.
func Detect(workDir string, cfg config.Config) []string {
	cmds := cfg.Sub(config.KeyTestCommands)

	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(workDir, m.file)); err != nil {
			continue
		}
		raw, _ := cmds[m.lang].(string)
		if raw == "" {
			continue
		}
		return strings.Fields(raw)
	}

	if makefileHasTarget(workDir, "test") {
		return []string{"make", "test"}
	}
	return nil
}

func makefileHasTarget(workDir, target string) bool {
	content, err := os.ReadFile(filepath.Join(workDir, "Makefile"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, target+":") {
			return true
		}
	}
	return false
}

// Run executes the detected test command and parses its output.
func Run(ctx context.Context, workDir string, cfg config.Config, timeout time.Duration) *Summary {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	summary := &Summary{Result: ResultNotRun}
	argv := Detect(workDir, cfg)
	if len(argv) == 0 {
		return summary
	}
	summary.Command = strings.Join(argv, " ")

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = workDir

	start := time.Now()
	output, err := cmd.CombinedOutput()
	summary.Duration = time.Since(start)
	summary.Output = truncate(string(output), outputLimit)

	if runCtx.Err() == context.DeadlineExceeded {
		summary.Result = ResultError
		summary.Output = "test run timed out after " + timeout.String()
		return summary
	}
	if err != nil {
		summary.Result = ResultFailed
	} else {
		summary.Result = ResultPassed
	}

	ParseCounts(summary)
	return summary
}

// ParseCounts extracts pass/fail counts from common test runner output
// formats. Best effort: unrecognized output leaves counts at zero.
func ParseCounts(summary *Summary) {
	for _, line := range strings.Split(summary.Output, "\n") {
		line = strings.TrimSpace(line)

		// Jest: "Tests: 3 passed, 1 failed, 4 total"
		// pytest: "3 passed, 1 failed in 0.5s"
		if strings.Contains(line, "passed") {
			if n := countBefore(line, "passed"); n > 0 {
				summary.Passed = n
			}
			summary.Failed = countBefore(line, "failed")
			summary.Skipped = countBefore(line, "skipped")
			if n := countBefore(line, "total"); n > 0 {
				summary.Total = n
			}
		}

		// go test: one "ok" or "FAIL" line per package.
		if strings.HasPrefix(line, "ok ") {
			summary.Passed++
		} else if strings.HasPrefix(line, "FAIL\t") || strings.HasPrefix(line, "FAIL ") {
			summary.Failed++
		}
	}

	if summary.Total == 0 {
		summary.Total = summary.Passed + summary.Failed + summary.Skipped
	}
}

// countBefore finds the integer immediately preceding a keyword, as in
// "3 passed".
func countBefore(line, keyword string) int {
	idx := strings.Index(line, keyword)
	if idx <= 0 {
		return 0
	}

	end := idx
	for end > 0 && line[end-1] == ' ' {
		end--
	}
	start := end
	for start > 0 && line[start-1] >= '0' && line[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}

	n := 0
	for _, c := range line[start:end] {
		n = n*10 + int(c-'0')
	}
	return n
}

// Describe renders a Summary as one line for hook and status output.
func Describe(s *Summary) string {
	if s.Result == ResultNotRun {
		return "tests not run"
	}
	if s.Total == 0 {
		if s.Result == ResultPassed {
			return "all tests passed"
		}
		return "tests failed"
	}

	var parts []string
	if s.Passed > 0 {
		parts = append(parts, fmt.Sprintf("%d passed", s.Passed))
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", s.Skipped))
	}
	return strings.Join(parts, ", ")
}

// DidTestsRun scans transcript or command output for signs that a test
// suite was executed this session.
func DidTestsRun(transcript string) bool {
	indicators := []string{
		"npm test", "pytest", "go test", "cargo test",
		"make test", "mvn test", "gradlew test",
		"test result:", "test suite", "tests passed", "tests failed",
	}

	lower := strings.ToLower(transcript)
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...[truncated]"
}
