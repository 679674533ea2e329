package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/hook"
)

var rootWorkDir string

var rootCmd = &cobra.Command{
	Use:   "phasegate",
	Short: "Workflow gates for AI coding agents",
	Long: "Mediates file modifications made by a coding agent, gating them on the\n" +
		"research → planning → implementation workflow. Hook events arrive on\n" +
		"stdin as JSON and verdicts leave on stdout; everything else is project\n" +
		"inspection and state management.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootWorkDir, "workdir", "",
		"Project directory (default: $CLAUDE_WORKING_DIRECTORY, then cwd)")
}

// workDir resolves the project directory for a command: the --workdir
// flag first, then the environment override, then the process cwd.
func workDir() (string, error) {
	if rootWorkDir != "" {
		return rootWorkDir, nil
	}
	if dir := hook.WorkDir(); dir != "" {
		return dir, nil
	}
	return "", fmt.Errorf("cannot determine working directory")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
