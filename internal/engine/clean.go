package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/envlay/envlay/internal/lifecycle"
)

// Clean prunes leftover overlay directories under the persistent parent.
// The lifecycle guard removes its own directory on every exit path the
// process controls, but SIGKILL and power loss leave orphans; Clean is the
// recovery path for those.
func (e *Engine) Clean(ctx context.Context, req *CleanRequest) (*CleanResult, error) {
	entries, err := e.fs.ReadDir(e.paths.Overlays)
	if err != nil {
		if os.IsNotExist(err) {
			return &CleanResult{}, nil
		}
		return nil, fmt.Errorf("failed to read overlay parent directory: %w", err)
	}

	now := e.clock.Now()
	result := &CleanResult{}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), lifecycle.OverlayPrefix) {
			continue
		}
		dir := filepath.Join(e.paths.Overlays, entry.Name())

		if !req.All {
			info, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
			}
			if now.Sub(info.ModTime()) < req.OlderThan {
				result.Kept++
				continue
			}
		}

		if !req.DryRun {
			if err := e.fs.RemoveAll(dir); err != nil {
				return nil, fmt.Errorf("failed to remove %s: %w", dir, err)
			}
		}
		result.Removed = append(result.Removed, dir)
	}

	e.log.Debug().
		Int("removed", len(result.Removed)).
		Int("kept", result.Kept).
		Bool("dry_run", req.DryRun).
		Msg("clean pass finished")

	return result, nil
}
