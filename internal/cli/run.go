package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/envlay/envlay/internal/engine"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Run a command against the merged overlay",
	Long: `Build the merged overlay directory and run the given command with the
overlay environment keys appended to its environment.

The overlay is removed when the command exits, and on SIGINT or SIGTERM.
The child's exit code becomes envlay's exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		setupReq, err := discoveryRequest()
		if err != nil {
			return err
		}

		result, err := eng.Run(context.Background(), &engine.RunRequest{
			Setup:   *setupReq,
			Command: args,
		})
		if err != nil {
			return err
		}

		if result.ExitCode != 0 {
			os.Exit(result.ExitCode)
		}
		return nil
	},
}

func init() {
	addDiscoveryFlags(runCmd)
}
