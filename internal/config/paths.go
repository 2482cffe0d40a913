// Package config manages envlay settings and filesystem paths.
//
// Settings control how layers are discovered and which environment keys the
// merged overlay is published under; they come from an optional TOML file with
// defaults for every field. Paths locate envlay's own data: the persistent
// parent directory that ephemeral overlay directories are allocated inside.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Paths contains the filesystem paths used by envlay itself.
type Paths struct {
	// DataHome is the base directory for all envlay data.
	DataHome string

	// Overlays is the parent directory ephemeral overlay directories are
	// allocated under. It outlives any single invocation.
	Overlays string

	// ConfigFile is the default path of the settings file.
	ConfigFile string
}

// DefaultPaths returns the default paths for envlay.
// ENVLAY_DATA_HOME overrides the data home; otherwise the platform's
// per-user data directory is used.
func DefaultPaths() (*Paths, error) {
	dataHome := os.Getenv("ENVLAY_DATA_HOME")
	if dataHome == "" {
		base, err := userDataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate user data directory: %w", err)
		}
		dataHome = filepath.Join(base, "envlay")
	}

	confDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate user config directory: %w", err)
	}

	return &Paths{
		DataHome:   dataHome,
		Overlays:   filepath.Join(dataHome, "overlays"),
		ConfigFile: filepath.Join(confDir, "envlay", "config.toml"),
	}, nil
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataHome,
		p.Overlays,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// userDataDir returns the platform per-user data directory, following the
// XDG base directory convention on unix-like systems.
func userDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("%%APPDATA%% is not set")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}
