package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/gitinfo"
	"github.com/ppiankov/phasegate/internal/journal"
	"github.com/ppiankov/phasegate/internal/testrunner"
	"github.com/ppiankov/phasegate/internal/workflow"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check project readiness and diagnose configuration issues",
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	dir, err := workDir()
	if err != nil {
		return err
	}

	var checks []checkResult

	// 1. Binary location and version.
	execPath, _ := os.Executable()
	if execPath != "" {
		checks = append(checks, checkResult{
			label:  "phasegate binary",
			ok:     true,
			detail: fmt.Sprintf("%s (v%s)", execPath, version),
		})
	} else {
		checks = append(checks, checkResult{
			label:  "phasegate binary",
			ok:     false,
			detail: "cannot determine executable path",
		})
	}

	// 2. .claude directory.
	claudeDir := filepath.Join(dir, config.ConfigDirName)
	if info, err := os.Stat(claudeDir); err == nil && info.IsDir() {
		checks = append(checks, checkResult{label: ".claude directory", ok: true, detail: claudeDir})
	} else {
		checks = append(checks, checkResult{
			label:  ".claude directory",
			ok:     false,
			detail: "missing",
			fix:    "phasegate init",
		})
	}

	// 3. Initialization marker.
	if config.IsInitialized(dir) {
		checks = append(checks, checkResult{label: "init marker", ok: true, detail: "present"})
	} else {
		checks = append(checks, checkResult{
			label:  "init marker",
			ok:     false,
			detail: "absent (enforcement is off)",
			fix:    "phasegate init",
		})
	}

	// 4. Configuration file parses.
	cfgPath := config.Path(dir)
	if data, err := os.ReadFile(cfgPath); err != nil {
		checks = append(checks, checkResult{
			label:  "claude-harness.json",
			ok:     false,
			detail: "missing (defaults in effect)",
			fix:    "phasegate init",
		})
	} else if !json.Valid(data) {
		checks = append(checks, checkResult{
			label:  "claude-harness.json",
			ok:     false,
			detail: "malformed JSON (defaults in effect)",
			fix:    "fix or delete " + cfgPath,
		})
	} else {
		cfg := config.Load(dir, true)
		checks = append(checks, checkResult{
			label:  "claude-harness.json",
			ok:     true,
			detail: fmt.Sprintf("strictness=%s", cfg.Strictness()),
		})
	}

	// 5. Workflow state.
	if state, err := workflow.Load(dir); err != nil {
		checks = append(checks, checkResult{
			label:  "workflow state",
			ok:     false,
			detail: err.Error(),
			fix:    "phasegate phase reset",
		})
	} else {
		checks = append(checks, checkResult{
			label:  "workflow state",
			ok:     true,
			detail: string(state.CurrentPhase()),
		})
	}

	// 6. Decision journal opens.
	if j, err := journal.Open(dir); err != nil {
		checks = append(checks, checkResult{
			label:  "decision journal",
			ok:     false,
			detail: err.Error(),
		})
	} else {
		n, _ := j.Count()
		j.Close()
		checks = append(checks, checkResult{
			label:  "decision journal",
			ok:     true,
			detail: fmt.Sprintf("%d decisions", n),
		})
	}

	// 7. Git repository (informational for the session-start hook).
	if gitinfo.IsRepo(dir) {
		checks = append(checks, checkResult{label: "git repository", ok: true, detail: "detected"})
	} else {
		checks = append(checks, checkResult{
			label:  "git repository",
			ok:     false,
			detail: "not a git repository (git sections skipped)",
		})
	}

	// 8. Baseline test command detection.
	cfg := config.Load(dir, false)
	if cmds := testrunner.Detect(dir, cfg); len(cmds) > 0 {
		checks = append(checks, checkResult{
			label:  "test command",
			ok:     true,
			detail: strings.Join(cmds, "; "),
		})
	} else {
		checks = append(checks, checkResult{
			label:  "test command",
			ok:     false,
			detail: "no project markers found (baseline tests skipped)",
		})
	}

	// Print results.
	hasFailures := false
	for _, c := range checks {
		mark := "✓" // ✓
		if !c.ok {
			mark = "✗" // ✗
			hasFailures = true
		}
		line := fmt.Sprintf("%s %-20s %s", mark, c.label+":", c.detail)
		if !c.ok && c.fix != "" {
			line += fmt.Sprintf("  ->  %s", c.fix)
		}
		fmt.Println(line)
	}

	if hasFailures {
		fmt.Println()
		fmt.Println("Some checks failed. Run the suggested commands to fix.")
		return fmt.Errorf("doctor found issues")
	}

	fmt.Println()
	fmt.Println("All checks passed.")
	return nil
}
