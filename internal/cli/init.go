package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/progress"
	"github.com/ppiankov/phasegate/internal/workflow"
)

var (
	initProject string
	initForce   bool
)

func init() {
	initCmd.Flags().StringVar(&initProject, "project", "", "Project name for the progress log header (default: directory name)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config and state files")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap the harness for a project",
	Long: `Creates the .claude directory, default configuration, workflow state,
progress log, and the initialization marker that turns enforcement on.

Existing files are left alone unless --force is given; re-running init
on an initialized project is safe.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := workDir()
	if err != nil {
		return err
	}

	claudeDir := filepath.Join(dir, config.ConfigDirName)
	if err := os.MkdirAll(claudeDir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", claudeDir, err)
	}

	var created []string

	// Default configuration.
	cfgPath := config.Path(dir)
	if wrote, err := writeConfigIfMissing(cfgPath); err != nil {
		return err
	} else if wrote {
		created = append(created, cfgPath)
	}

	// Workflow state: a fresh research phase.
	statePath := workflow.StatePath(dir)
	if initForce || !fileExists(statePath) {
		if _, err := workflow.Reset(dir); err != nil {
			return fmt.Errorf("write workflow state: %w", err)
		}
		created = append(created, statePath)
	}

	// Progress log header.
	project := initProject
	if project == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		project = filepath.Base(abs)
	}
	if !progress.Exists(dir) {
		if err := progress.Initialize(dir, project); err != nil {
			return fmt.Errorf("initialize progress log: %w", err)
		}
		created = append(created, progress.Path(dir))
	}

	// Marker last: enforcement only starts once everything else is in
	// place.
	markerPath := config.MarkerPath(dir)
	if !fileExists(markerPath) {
		if err := os.WriteFile(markerPath, nil, 0o600); err != nil {
			return fmt.Errorf("write marker: %w", err)
		}
		created = append(created, markerPath)
	}

	fmt.Println("phasegate init complete.")
	fmt.Println()
	if len(created) > 0 {
		fmt.Println("Created:")
		for _, path := range created {
			fmt.Printf("  %s\n", path)
		}
	} else {
		fmt.Println("All files already exist (use --force to reset state).")
	}
	fmt.Println()
	fmt.Println("Verify:")
	fmt.Println("  phasegate doctor")
	fmt.Println()
	fmt.Println("Inspect workflow state:")
	fmt.Println("  phasegate status")

	return nil
}

// writeConfigIfMissing writes the default configuration unless the file
// exists and --force is unset. Returns true if the file was written.
func writeConfigIfMissing(path string) (bool, error) {
	if !initForce && fileExists(path) {
		return false, nil
	}
	data, err := json.MarshalIndent(config.Defaults(), "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
