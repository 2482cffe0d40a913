package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/envlay/envlay/internal/clock"
	"github.com/envlay/envlay/internal/config"
	"github.com/envlay/envlay/internal/engine"
	"github.com/envlay/envlay/internal/fsops"
	"github.com/envlay/envlay/internal/logging"
)

// Discovery input flags shared by run, env, and layers.
var (
	flagSearchPath string
	flagPrefix     string
)

// addDiscoveryFlags registers the shared layer discovery flags on a command.
func addDiscoveryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagSearchPath, "search-path", "",
		"Search path entries, joined with the platform path-list separator (default: ENVLAY_SEARCH_PATH)")
	cmd.Flags().StringVar(&flagPrefix, "prefix", "",
		"Canonical installation root (default: ENVLAY_PREFIX, then VIRTUAL_ENV)")
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() (*engine.Engine, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	settingsPath := configFile
	if settingsPath == "" {
		settingsPath = paths.ConfigFile
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	fs := fsops.NewRealFS()
	clk := &clock.RealClock{}
	log := logging.New("envlay", verbose)

	return engine.New(fs, clk, settings, *paths, log), nil
}

// discoveryRequest assembles the layer discovery inputs from flags and
// environment variables.
//
// Search paths come from --search-path or ENVLAY_SEARCH_PATH, split on the
// platform path-list separator. The prefix comes from --prefix,
// ENVLAY_PREFIX, or VIRTUAL_ENV, in that order.
func discoveryRequest() (*engine.SetupRequest, error) {
	searchPath := flagSearchPath
	if searchPath == "" {
		searchPath = os.Getenv("ENVLAY_SEARCH_PATH")
	}

	var entries []string
	for _, entry := range strings.Split(searchPath, string(os.PathListSeparator)) {
		if entry != "" {
			entries = append(entries, entry)
		}
	}

	prefix := flagPrefix
	if prefix == "" {
		prefix = os.Getenv("ENVLAY_PREFIX")
	}
	if prefix == "" {
		prefix = os.Getenv("VIRTUAL_ENV")
	}
	if prefix == "" {
		return nil, fmt.Errorf("%w: set --prefix, ENVLAY_PREFIX, or VIRTUAL_ENV", engine.ErrNoPrefix)
	}

	return &engine.SetupRequest{
		SearchPaths: entries,
		Prefix:      prefix,
	}, nil
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
