// Package engine provides the core business logic for envlay operations.
//
// The engine package acts as the orchestration layer between CLI commands
// and the lower-level packages. It coordinates layer resolution, overlay
// construction, lifecycle guarding, and leftover-directory cleanup.
//
// Key components:
//   - Engine: main orchestrator that coordinates all operations
//   - Setup: resolve layers, allocate the overlay directory, build the merge
//   - Run: Setup plus running a child command against the merged environment
//   - Clean: prune leftover overlay directories from crashed invocations
package engine

import (
	"github.com/rs/zerolog"

	"github.com/envlay/envlay/internal/clock"
	"github.com/envlay/envlay/internal/config"
	"github.com/envlay/envlay/internal/fsops"
	"github.com/envlay/envlay/internal/lifecycle"
)

// watchFunc installs a termination watcher on a guard and returns a detach
// function. Production wiring is Guard.WatchTermination; tests substitute a
// fake so signal delivery and exit can be observed in-process.
type watchFunc func(*lifecycle.Guard) (stop func())

// Engine orchestrates all envlay operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs       fsops.FS
	clock    clock.Clock
	settings config.Settings
	paths    config.Paths
	log      zerolog.Logger
	watch    watchFunc
}

// New creates a new Engine with the given dependencies.
func New(
	fs fsops.FS,
	clk clock.Clock,
	settings config.Settings,
	paths config.Paths,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		fs:       fs,
		clock:    clk,
		settings: settings,
		paths:    paths,
		log:      log,
		watch: func(g *lifecycle.Guard) func() {
			return g.WatchTermination()
		},
	}
}
