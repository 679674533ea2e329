package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phasegate/internal/hook"
)

func init() {
	for _, event := range []string{
		hook.EventPreToolUse,
		hook.EventPostToolUse,
		hook.EventSessionStart,
		hook.EventStop,
		hook.EventSubagentStop,
		hook.EventUserPromptSubmit,
		hook.EventPreCompact,
	} {
		hookCmd.AddCommand(newHookEventCmd(event))
	}
	rootCmd.AddCommand(hookCmd)
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Run one agent hook event (JSON on stdin, JSON on stdout)",
	Long: `Each subcommand handles one hook event: it reads a single JSON request
from stdin, writes a single JSON response to stdout, and exits zero no
matter what happened. Denials travel in the payload, never in the exit
code. Wire these into the agent's hook configuration.`,
}

// newHookEventCmd builds the command for one hook event. Errors never
// escape: a broken request degrades to an empty one and a handler fault
// becomes a diagnostic message, per the hook contract.
func newHookEventCmd(event string) *cobra.Command {
	return &cobra.Command{
		Use:   event,
		Short: "Handle the " + event + " event",
		Run: func(cmd *cobra.Command, args []string) {
			req, err := hook.ReadRequest(cmd.InOrStdin())
			if err != nil {
				// Unparsable input is an empty request, not a failure.
				req = &hook.Request{}
			}

			dir := rootWorkDir
			if dir == "" {
				dir = hook.WorkDir()
			}

			resp := hook.Handle(event, hook.NewEnv(dir), req)
			if err := resp.Write(cmd.OutOrStdout()); err != nil {
				// Nothing left to do: stdout is gone. Still exit zero.
				_, _ = os.Stderr.WriteString("phasegate: write hook response: " + err.Error() + "\n")
			}
		},
	}
}
