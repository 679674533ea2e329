package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/progress"
)

var progressLimit int

func init() {
	progressShowCmd.Flags().IntVarP(&progressLimit, "limit", "n", 20, "Number of recent entries to show (0 for all)")
	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressAddCmd)
	rootCmd.AddCommand(progressCmd)
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Read and append to the session progress log",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print recent progress entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		entries, err := progress.Recent(dir, progressLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No progress entries.")
			return nil
		}
		for _, e := range entries {
			fmt.Println(e)
		}
		return nil
	},
}

var progressAddCmd = &cobra.Command{
	Use:   "add <message>...",
	Short: "Append one timestamped entry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		return progress.Append(dir, strings.Join(args, " "))
	},
}
