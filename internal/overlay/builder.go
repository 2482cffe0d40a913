// Package overlay materializes the file-level union of layer directories
// into a destination directory using hard links.
//
// Layers are walked in the order given; the first file projected at a
// destination path wins, and later layers' files at the same path are
// skipped. Skipping is a first-class projection outcome, not a suppressed
// error, so callers and tests can assert on it directly.
package overlay

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/envlay/envlay/internal/fsops"
)

// Outcome is the result of projecting a single file into the destination.
type Outcome int

const (
	// OutcomeLinked means the file was hard-linked into the destination.
	OutcomeLinked Outcome = iota

	// OutcomeSkipped means the destination path was already populated by a
	// previously walked layer and the file was left untouched.
	OutcomeSkipped
)

// LayerStats tallies the projection outcomes for one layer.
type LayerStats struct {
	// Dir is the layer's data directory.
	Dir string

	// Linked is the number of files projected from this layer.
	Linked int

	// Skipped is the number of files shadowed by previously walked layers.
	Skipped int
}

// Result describes a completed merge.
type Result struct {
	// Dest is the destination directory the union was built in.
	Dest string

	// Linked is the total number of files projected across all layers.
	Linked int

	// Skipped is the total number of shadowed files across all layers.
	Skipped int

	// Layers holds per-layer tallies in walk order.
	Layers []LayerStats
}

// Builder populates a destination directory from ordered layers.
type Builder struct {
	fs  fsops.FS
	log zerolog.Logger
}

// NewBuilder creates a Builder using the given filesystem.
func NewBuilder(fs fsops.FS, log zerolog.Logger) *Builder {
	return &Builder{fs: fs, log: log}
}

// Build walks each layer in the given order and projects every regular file
// into dest at its path relative to the layer root. Non-regular entries
// (directories, symlinks, devices) are never projected; intermediate
// destination directories are created as needed.
//
// A layer directory that does not exist contributes nothing. Any filesystem
// error other than "destination already exists" aborts the build; there is
// no partial-success recovery.
func (b *Builder) Build(dest string, layerDirs []string) (*Result, error) {
	result := &Result{Dest: dest}

	for _, dir := range layerDirs {
		stats := LayerStats{Dir: dir}

		exists, err := b.fs.Exists(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to check layer %s: %w", dir, err)
		}
		if exists {
			if err := b.walkLayer(dir, dest, &stats); err != nil {
				return nil, err
			}
		}

		b.log.Debug().
			Str("layer", dir).
			Int("linked", stats.Linked).
			Int("skipped", stats.Skipped).
			Msg("layer merged")

		result.Linked += stats.Linked
		result.Skipped += stats.Skipped
		result.Layers = append(result.Layers, stats)
	}

	return result, nil
}

// walkLayer projects one layer's regular files into dest.
func (b *Builder) walkLayer(dir, dest string, stats *LayerStats) error {
	return b.fs.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk layer %s: %w", dir, err)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s against %s: %w", path, dir, err)
		}

		outcome, err := b.project(path, rel, dest)
		if err != nil {
			return err
		}
		switch outcome {
		case OutcomeLinked:
			stats.Linked++
		case OutcomeSkipped:
			stats.Skipped++
		}
		return nil
	})
}

// project hard-links the source file at dest/<rel>, reporting whether the
// link was created or the destination was already populated.
func (b *Builder) project(src, rel, dest string) (Outcome, error) {
	if err := b.fs.ValidateRelPath(rel); err != nil {
		return 0, fmt.Errorf("refusing to project %s: %w", src, err)
	}

	target := filepath.Join(dest, rel)
	if err := b.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, fmt.Errorf("failed to create destination directory for %s: %w", rel, err)
	}

	if err := b.fs.Link(src, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return OutcomeSkipped, nil
		}
		return 0, fmt.Errorf("failed to link %s into overlay: %w", rel, err)
	}
	return OutcomeLinked, nil
}
