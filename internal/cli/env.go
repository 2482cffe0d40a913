package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env [flags]",
	Short: "Build the merged overlay and print its environment assignments",
	Long: `Build the merged overlay directory and print the two environment
assignments a downstream application needs, one KEY=VALUE per line.

The overlay directory is intentionally left in place: its lifetime belongs to
whatever shell session consumes the printed assignments. Remove it later with
'envlay clean'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		setupReq, err := discoveryRequest()
		if err != nil {
			return err
		}

		result, err := eng.Setup(context.Background(), setupReq)
		if err != nil {
			return err
		}
		if err := result.Guard.Activate(); err != nil {
			return err
		}

		// The overlay now outlives this process; detach the termination
		// watcher so a late signal cannot delete the paths being printed.
		result.StopWatch()

		if jsonOutput {
			return outputJSON(result.Env)
		}

		for _, pair := range result.Env.Pairs() {
			fmt.Println(pair)
		}
		return nil
	},
}

func init() {
	addDiscoveryFlags(envCmd)
}
