package engine

import (
	"github.com/envlay/envlay/internal/layers"
)

// Resolve computes the layer resolution without allocating or building
// anything. It backs the layers listing command.
func (e *Engine) Resolve(req *SetupRequest) (*layers.Resolution, error) {
	if req.Prefix == "" {
		return nil, ErrNoPrefix
	}
	return layers.NewResolver(e.fs, e.settings).Resolve(req.SearchPaths, req.Prefix), nil
}
