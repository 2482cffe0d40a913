package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	verbose    bool
	configFile string
)

// rootCmd is the root command for envlay.
var rootCmd = &cobra.Command{
	Use:     "envlay",
	Version: "dev",
	Short:   "Merge stacked environment data directories into one overlay",
	Long: `envlay merges the per-environment data subtrees of stacked isolated
installations (virtualenv-style) into a single ephemeral, hard-linked overlay
directory, and publishes its location through well-known environment keys so a
downstream application sees one unified data tree.

The overlay lives exactly as long as the invocation that built it and is
removed on exit and on SIGINT/SIGTERM.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to the settings file")

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "overlay",
		Title: "Overlay Lifecycle:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "maintenance",
		Title: "Maintenance:",
	})

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the envlay CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	// Overlay Lifecycle commands
	runCmd.GroupID = "overlay"
	envCmd.GroupID = "overlay"
	layersCmd.GroupID = "overlay"
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(layersCmd)

	// Maintenance commands
	cleanCmd.GroupID = "maintenance"
	rootCmd.AddCommand(cleanCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
