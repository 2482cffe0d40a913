package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/envlay/envlay/internal/engine"
)

var (
	cleanAll       bool
	cleanOlderThan time.Duration
	cleanDryRun    bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [flags]",
	Short: "Remove leftover overlay directories",
	Long: `Remove overlay directories left behind by invocations that could not
clean up after themselves (SIGKILL, power loss) or by 'envlay env'.

By default only directories older than the --older-than cutoff are removed;
--all removes every leftover regardless of age.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Clean(context.Background(), &engine.CleanRequest{
			All:       cleanAll,
			OlderThan: cleanOlderThan,
			DryRun:    cleanDryRun,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if cleanDryRun {
			PrintSection("Dry Run")
		}
		if len(result.Removed) == 0 {
			PrintEmptyState("no leftover overlay directories")
			return nil
		}
		verb := "Removed"
		if cleanDryRun {
			verb = "Would remove"
		}
		PrintSuccess(fmt.Sprintf("%s %s", verb, PrintCount(len(result.Removed), "overlay directory", "overlay directories")))
		PrintList(result.Removed, 1)
		if result.Kept > 0 {
			PrintLabelValue("Kept", PrintCount(result.Kept, "newer directory", "newer directories"))
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "Remove every leftover overlay directory regardless of age")
	cleanCmd.Flags().DurationVar(&cleanOlderThan, "older-than", 24*time.Hour, "Only remove directories older than this")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Show what would be removed without removing")
}
