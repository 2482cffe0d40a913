package cli

import (
	"github.com/spf13/cobra"
)

var layersCmd = &cobra.Command{
	Use:   "layers [flags]",
	Short: "Show the resolved layer list without building anything",
	Long: `Resolve the layer list from the search paths and prefix and show the
data directories in merge precedence order plus the config directory list.

Nothing is allocated or written; this is a discovery debugging aid.`,
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

		resolution, err := eng.Resolve(setupReq)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(resolution)
		}

		PrintSection("Data Layers (highest precedence first)")
		PrintNumberedList(resolution.MergeOrder(), 1)

		PrintSection("Config Directories (discovery order)")
		if len(resolution.ConfigDirs) == 0 {
			PrintEmptyState("none discovered")
		} else {
			PrintList(resolution.ConfigDirs, 1)
		}
		return nil
	},
}

func init() {
	addDiscoveryFlags(layersCmd)
}
