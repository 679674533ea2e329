package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/features"
	"github.com/ppiankov/phasegate/internal/pathguard"
)

var (
	featureID       string
	featureDesc     string
	featurePriority int
)

func init() {
	featuresAddCmd.Flags().StringVar(&featureID, "id", "", "Feature identifier (default: derived from the name)")
	featuresAddCmd.Flags().StringVar(&featureDesc, "desc", "", "Feature description")
	featuresAddCmd.Flags().IntVar(&featurePriority, "priority", 0, "Priority (lower sorts first)")
	featuresCmd.AddCommand(featuresListCmd)
	featuresCmd.AddCommand(featuresAddCmd)
	featuresCmd.AddCommand(featuresDoneCmd)
	rootCmd.AddCommand(featuresCmd)
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Manage the project feature checklist",
}

var featuresListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the checklist with status marks",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		list, err := features.Load(dir)
		if err != nil {
			return err
		}
		if len(list.Features) == 0 {
			fmt.Println("No features tracked. Add one with `phasegate features add`.")
			return nil
		}
		for _, f := range list.Features {
			mark := " "
			switch f.Status {
			case features.StatusCompleted:
				mark = "x"
			case features.StatusInProgress:
				mark = "~"
			}
			line := fmt.Sprintf("[%s] %-20s %s", mark, f.ID, f.Name)
			if f.Description != "" {
				line += " — " + f.Description
			}
			fmt.Println(line)
		}

		if summary, err := features.Summarize(dir); err == nil {
			fmt.Printf("\n%d total: %d completed, %d in progress, %d planned\n",
				summary.Total, summary.Completed, summary.InProgress, summary.Planned)
		}
		return nil
	},
}

var featuresAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Add a planned feature",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		name := strings.Join(args, " ")
		id := featureID
		if id == "" {
			id = pathguard.SanitizeFilename(strings.ToLower(strings.ReplaceAll(name, " ", "-")), 64)
		}
		f := features.Feature{
			ID:          id,
			Name:        name,
			Description: featureDesc,
			Status:      features.StatusPlanned,
			Priority:    featurePriority,
		}
		if err := features.Add(dir, f); err != nil {
			return err
		}
		fmt.Printf("Added %s\n", id)
		return nil
	},
}

var featuresDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a feature completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		if err := features.MarkCompleted(dir, args[0]); err != nil {
			return err
		}
		fmt.Printf("Completed %s\n", args[0])
		return nil
	},
}
