package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/progress"
	"github.com/ppiankov/phasegate/internal/workflow"
)

var phaseConfidence float64

func init() {
	phaseResearchDoneCmd.Flags().Float64Var(&phaseConfidence, "confidence", 0.8,
		"Research confidence (0.0-1.0) recorded with the transition")
	phaseCmd.AddCommand(phaseShowCmd)
	phaseCmd.AddCommand(phaseResearchDoneCmd)
	phaseCmd.AddCommand(phasePlanValidatedCmd)
	phaseCmd.AddCommand(phaseResetCmd)
	rootCmd.AddCommand(phaseCmd)
}

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Inspect and advance the workflow phase",
	Long: `The workflow runs research → planning → implementation. File edits are
gated until research is marked complete and the plan validated; these
commands record those transitions.`,
}

var phaseShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current workflow state",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		state, err := workflow.Load(dir)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var phaseResearchDoneCmd = &cobra.Command{
	Use:   "research-done",
	Short: "Mark research complete and enter the planning phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		if phaseConfidence < 0 || phaseConfidence > 1 {
			return fmt.Errorf("confidence must be between 0.0 and 1.0")
		}
		state, err := workflow.MarkResearchDone(dir, phaseConfidence)
		if err != nil {
			return err
		}
		_ = progress.Append(dir, fmt.Sprintf("Research complete (confidence %.0f%%), entering planning",
			phaseConfidence*100))
		fmt.Printf("Phase: %s\n", state.CurrentPhase())
		return nil
	},
}

var phasePlanValidatedCmd = &cobra.Command{
	Use:   "plan-validated",
	Short: "Mark the plan validated and enter the implementation phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		state, err := workflow.MarkPlanValidated(dir)
		if err != nil {
			return err
		}
		_ = progress.Append(dir, "Plan validated, entering implementation")
		fmt.Printf("Phase: %s\n", state.CurrentPhase())
		return nil
	},
}

var phaseResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Return to a fresh research phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}
		state, err := workflow.Reset(dir)
		if err != nil {
			return err
		}
		_ = progress.Append(dir, "Workflow reset to research phase")
		fmt.Printf("Phase: %s\n", state.CurrentPhase())
		return nil
	},
}
