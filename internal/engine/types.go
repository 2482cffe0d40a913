package engine

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/envlay/envlay/internal/layers"
	"github.com/envlay/envlay/internal/lifecycle"
	"github.com/envlay/envlay/internal/overlay"
)

// Environment is the published output of a merge: two environment-style
// key/value pairs the downstream application reads. It is computed once per
// setup and immutable afterwards.
type Environment struct {
	// DataKey is the environment key the overlay path is published under.
	DataKey string

	// DataDir is the absolute path of the merged overlay directory.
	DataDir string

	// ConfigKey is the environment key the config path list is published under.
	ConfigKey string

	// ConfigDirs is the config directory list in layer discovery order.
	ConfigDirs []string
}

// ConfigPath returns ConfigDirs joined with the platform path-list
// separator; empty when no layers were discovered.
func (env Environment) ConfigPath() string {
	return strings.Join(env.ConfigDirs, string(os.PathListSeparator))
}

// Pairs returns the two KEY=VALUE assignments for a child process environment.
func (env Environment) Pairs() []string {
	return []string{
		fmt.Sprintf("%s=%s", env.DataKey, env.DataDir),
		fmt.Sprintf("%s=%s", env.ConfigKey, env.ConfigPath()),
	}
}

// SetupRequest represents a request to resolve layers and build an overlay.
type SetupRequest struct {
	// SearchPaths is the host runtime's library search path entries, in order.
	SearchPaths []string

	// Prefix is the canonical installation root.
	Prefix string
}

// SetupResult represents the outcome of a completed setup.
type SetupResult struct {
	// Resolution is the computed layer list.
	Resolution *layers.Resolution

	// Build is the overlay builder's tally.
	Build *overlay.Result

	// Env is the published environment for downstream consumers.
	Env Environment

	// Guard owns the overlay directory; the caller must arrange Release.
	Guard *lifecycle.Guard

	// StopWatch detaches the termination watcher installed during setup.
	// Callers that deliberately let the overlay outlive the process must
	// call it before returning; callers that release the guard themselves
	// should detach once the release has run.
	StopWatch func()
}

// RunRequest represents a request to run a command against a merged overlay.
type RunRequest struct {
	// Setup carries the layer discovery inputs.
	Setup SetupRequest

	// Command is the child argv; Command[0] is the executable.
	Command []string
}

// RunResult represents the result of a completed run.
type RunResult struct {
	// ExitCode is the child process's exit code.
	ExitCode int

	// Env is the environment the child ran with.
	Env Environment

	// OverlayDir is the overlay directory the child consumed. It is removed
	// by the time Run returns.
	OverlayDir string
}

// CleanRequest represents a request to prune leftover overlay directories.
type CleanRequest struct {
	// All removes every leftover overlay directory regardless of age.
	All bool

	// OlderThan removes directories whose modification time is at least
	// this far in the past. Ignored when All is set.
	OlderThan time.Duration

	// DryRun reports what would be removed without removing anything.
	DryRun bool
}

// CleanResult represents the result of a clean pass.
type CleanResult struct {
	// Removed is the list of directories removed (or, under DryRun, that
	// would have been removed).
	Removed []string

	// Kept is the number of overlay directories left in place.
	Kept int
}
