package engine

import (
	"context"
	"fmt"

	"github.com/envlay/envlay/internal/layers"
	"github.com/envlay/envlay/internal/lifecycle"
	"github.com/envlay/envlay/internal/overlay"
)

// Algorithm steps:
// 1. Resolve the layer list from the search paths and prefix
// 2. Allocate the guarded overlay directory and install the termination watch
// 3. Walk the layers in merge order, hard-linking files into the overlay
// 4. Mark the guard populated and compute the published environment
//
// The watch is installed the moment the directory exists, before any file is
// projected: a SIGINT or SIGTERM landing mid-walk releases the partially
// populated overlay and exits 0. On any build failure the allocated
// directory is released before the error is returned, so no orphan is left
// behind by the failing invocation itself.
func (e *Engine) Setup(ctx context.Context, req *SetupRequest) (*SetupResult, error) {
	if req.Prefix == "" {
		return nil, ErrNoPrefix
	}

	resolution := layers.NewResolver(e.fs, e.settings).Resolve(req.SearchPaths, req.Prefix)
	e.log.Debug().
		Strs("data_dirs", resolution.DataDirs).
		Strs("config_dirs", resolution.ConfigDirs).
		Msg("layers resolved")

	guard, err := lifecycle.Allocate(e.fs, e.paths.Overlays, e.log)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate overlay: %w", err)
	}
	stop := e.watch(guard)

	build, err := overlay.NewBuilder(e.fs, e.log).Build(guard.Dir(), resolution.MergeOrder())
	if err != nil {
		if relErr := guard.Release(); relErr != nil {
			e.log.Error().Err(relErr).Msg("failed to release overlay after build failure")
		}
		stop()
		return nil, fmt.Errorf("failed to build overlay: %w", err)
	}

	if err := guard.MarkPopulated(); err != nil {
		return nil, err
	}

	return &SetupResult{
		Resolution: resolution,
		Build:      build,
		Env: Environment{
			DataKey:    e.settings.DataEnv,
			DataDir:    guard.Dir(),
			ConfigKey:  e.settings.ConfigEnv,
			ConfigDirs: resolution.ConfigDirs,
		},
		Guard:     guard,
		StopWatch: stop,
	}, nil
}
