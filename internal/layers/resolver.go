// Package layers resolves the ordered list of data and config directories
// contributed by a stack of isolated installation roots.
//
// Each search path entry whose final segment matches the marker directory
// (site-packages for Python virtualenvs) identifies one environment; its root
// sits exactly three levels up. Every environment contributes a config
// directory unconditionally, and a data directory only when it exists on disk
// and is distinct from the canonical root's own data directory.
package layers

import (
	"path/filepath"

	"github.com/envlay/envlay/internal/config"
	"github.com/envlay/envlay/internal/fsops"
)

// Resolution is the outcome of layer discovery. It is computed once at
// startup and immutable afterwards.
type Resolution struct {
	// DataDirs holds the data directories to merge, base layer first:
	// the canonical root's data directory, then each discovered
	// environment's data directory in encounter order. No duplicates by
	// cleaned-path equality.
	DataDirs []string

	// ConfigDirs holds each discovered environment's config directory in
	// encounter order, whether or not it exists on disk. The canonical
	// root contributes no entry. Used for publication only, never merged.
	ConfigDirs []string
}

// MergeOrder returns the order the overlay builder must walk the layers in:
// the discovered environments in encounter order, then the canonical root
// last.
//
// Because the builder keeps the first file written at each destination path,
// this makes the first-discovered environment win every collision, each
// later environment beat the layers after it, and the canonical root lose
// to every environment that shadows one of its files.
func (r *Resolution) MergeOrder() []string {
	ordered := make([]string, 0, len(r.DataDirs))
	ordered = append(ordered, r.DataDirs[1:]...)
	ordered = append(ordered, r.DataDirs[0])
	return ordered
}

// Resolver derives layers from runtime search paths.
type Resolver struct {
	fs       fsops.FS
	settings config.Settings
}

// NewResolver creates a Resolver using the given filesystem and settings.
func NewResolver(fs fsops.FS, settings config.Settings) *Resolver {
	return &Resolver{fs: fs, settings: settings}
}

// Resolve computes the Resolution for the given search path entries and
// canonical installation root.
//
// Entries that are not isolated-environment paths, or whose data directory
// does not exist or cannot be read, are silently skipped; an empty search
// path list is valid and yields the degenerate single-layer resolution.
// Resolve is deterministic: the same inputs always produce the same
// Resolution.
func (r *Resolver) Resolve(searchPaths []string, prefix string) *Resolution {
	rootDataDir := filepath.Join(prefix, r.settings.DataSubdir())

	res := &Resolution{
		DataDirs:   []string{rootDataDir},
		ConfigDirs: []string{},
	}
	seen := map[string]bool{filepath.Clean(rootDataDir): true}

	for _, entry := range searchPaths {
		if filepath.Base(entry) != r.settings.Marker {
			continue
		}

		// The environment root is exactly three levels above the marker
		// directory: <root>/lib/<runtime>/<marker>.
		envRoot := filepath.Dir(filepath.Dir(filepath.Dir(entry)))

		res.ConfigDirs = append(res.ConfigDirs, filepath.Join(envRoot, r.settings.ConfigSubdir()))

		dataDir := filepath.Join(envRoot, r.settings.DataSubdir())
		if seen[filepath.Clean(dataDir)] {
			continue
		}
		exists, err := r.fs.Exists(dataDir)
		if err != nil || !exists {
			continue
		}

		seen[filepath.Clean(dataDir)] = true
		res.DataDirs = append(res.DataDirs, dataDir)
	}

	return res
}
