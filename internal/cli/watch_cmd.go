package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/watch"
	"github.com/ppiankov/phasegate/internal/workflow"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow enforcement mode and workflow phase as they change",
	Long: "Watches the project's .claude directory and prints the active\n" +
		"strictness level and workflow phase whenever the configuration,\n" +
		"marker, or state file changes. Ctrl-C to stop.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := workDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(config.Path(dir)); err != nil && !config.IsInitialized(dir) {
		fmt.Fprintln(os.Stderr, "note: project not initialized; run `phasegate init` first")
	}

	store := config.NewStore()
	printState := func(trigger string) {
		cfg := store.Load(dir, true)
		phase := workflow.PhaseResearch
		if state, err := workflow.Load(dir); err == nil {
			phase = state.CurrentPhase()
		}
		stamp := time.Now().Format("15:04:05")
		if trigger != "" {
			fmt.Printf("[%s] %s changed: mode=%s phase=%s initialized=%v\n",
				stamp, trigger, cfg.Strictness(), phase, config.IsInitialized(dir))
			return
		}
		fmt.Printf("[%s] mode=%s phase=%s initialized=%v\n",
			stamp, cfg.Strictness(), phase, config.IsInitialized(dir))
	}

	printState("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	w := watch.New(dir, printState)
	fmt.Fprintf(os.Stderr, "watching %s\n", w.Dir())
	return w.Run(ctx)
}
