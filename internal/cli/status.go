package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/features"
	"github.com/ppiankov/phasegate/internal/journal"
	"github.com/ppiankov/phasegate/internal/workflow"
)

var statusFormat string

func init() {
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "text", "Output format (text|json)")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show enforcement mode, workflow phase, and project state",
	RunE:  runStatus,
}

type statusReport struct {
	WorkDir          string  `json:"work_dir"`
	Initialized      bool    `json:"initialized"`
	Strictness       string  `json:"strictness"`
	GatesEnabled     bool    `json:"gates_enabled"`
	Phase            string  `json:"phase"`
	ResearchComplete bool    `json:"research_complete"`
	PlanValidated    bool    `json:"plan_validated"`
	Confidence       float64 `json:"confidence,omitempty"`
	Features         string  `json:"features,omitempty"`
	Decisions        int64   `json:"decisions"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, err := workDir()
	if err != nil {
		return err
	}

	cfg := config.Load(dir, false)
	report := statusReport{
		WorkDir:      dir,
		Initialized:  config.IsInitialized(dir),
		Strictness:   cfg.Strictness(),
		GatesEnabled: cfg.Bool(config.KeyFICEnabled),
	}

	state, err := workflow.Load(dir)
	if err != nil {
		state = &workflow.State{Phase: workflow.PhaseResearch}
	}
	report.Phase = string(state.CurrentPhase())
	report.ResearchComplete = state.ResearchComplete
	report.PlanValidated = state.PlanValidated
	report.Confidence = state.Confidence

	if summary, err := features.Summarize(dir); err == nil && summary.Total > 0 {
		report.Features = fmt.Sprintf("%d total, %d completed, %d in progress",
			summary.Total, summary.Completed, summary.InProgress)
	}

	if j, err := journal.Open(dir); err == nil {
		if n, err := j.Count(); err == nil {
			report.Decisions = n
		}
		j.Close()
	}

	if statusFormat == "json" {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Project:     %s\n", report.WorkDir)
	if !report.Initialized {
		fmt.Println("Initialized: no (run `phasegate init` to enable enforcement)")
		return nil
	}
	fmt.Println("Initialized: yes")
	fmt.Printf("Strictness:  %s\n", report.Strictness)
	fmt.Printf("Gates:       %s\n", enabledWord(report.GatesEnabled))
	fmt.Printf("Phase:       %s\n", report.Phase)
	fmt.Printf("  research complete: %v\n", report.ResearchComplete)
	fmt.Printf("  plan validated:    %v\n", report.PlanValidated)
	if report.Confidence > 0 {
		fmt.Printf("  confidence:        %.0f%%\n", report.Confidence*100)
	}
	if report.Features != "" {
		fmt.Printf("Features:    %s\n", report.Features)
	}
	fmt.Printf("Decisions:   %d journaled\n", report.Decisions)
	return nil
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
