package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/journal"
)

var (
	journalLimit   int
	journalSession string
	journalFormat  string
)

func init() {
	journalShowCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "Maximum entries to show")
	journalShowCmd.Flags().StringVar(&journalSession, "session", "", "Show all decisions for one session instead")
	journalShowCmd.Flags().StringVarP(&journalFormat, "format", "f", "text", "Output format (text|json)")
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalExportCmd)
	rootCmd.AddCommand(journalCmd)
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the gate decision journal",
}

var journalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print recent gate decisions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		j, err := journal.Open(dir)
		if err != nil {
			return err
		}
		defer j.Close()

		var entries []journal.Entry
		if journalSession != "" {
			entries, err = j.BySession(journalSession)
		} else {
			entries, err = j.Recent(journalLimit)
		}
		if err != nil {
			return err
		}

		if journalFormat == "json" {
			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		if len(entries) == 0 {
			fmt.Println("No decisions recorded.")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-5s  %-6s", e.At.Format("2006-01-02 15:04:05"), e.Verdict, e.Tool)
			if e.Path != "" {
				line += "  " + e.Path
			}
			if e.Reason != "" {
				line += "  (" + e.Reason + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every recorded decision as JSON to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		j, err := journal.Open(dir)
		if err != nil {
			return err
		}
		defer j.Close()
		return j.Export(os.Stdout)
	},
}
