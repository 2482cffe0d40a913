package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default setting values. The defaults target Jupyter installations stacked
// across virtualenvs, which is the common deployment of this tool.
const (
	DefaultAppID     = "jupyter"
	DefaultMarker    = "site-packages"
	DefaultDataEnv   = "JUPYTER_DATA_DIR"
	DefaultConfigEnv = "JUPYTER_CONFIG_PATH"
)

// Settings controls layer discovery and publication.
type Settings struct {
	// AppID names the application subtree merged from each layer:
	// data lives at <root>/share/<AppID>, config at <root>/etc/<AppID>.
	AppID string `toml:"app_id"`

	// Marker is the final path segment identifying an isolated-environment
	// search path entry.
	Marker string `toml:"marker"`

	// DataEnv is the environment key the merged overlay path is published under.
	DataEnv string `toml:"data_env"`

	// ConfigEnv is the environment key the config path list is published under.
	ConfigEnv string `toml:"config_env"`
}

// DefaultSettings returns settings with every field at its default.
func DefaultSettings() Settings {
	return Settings{
		AppID:     DefaultAppID,
		Marker:    DefaultMarker,
		DataEnv:   DefaultDataEnv,
		ConfigEnv: DefaultConfigEnv,
	}
}

// LoadSettings reads settings from the TOML file at path. A missing file is
// not an error: it yields pure defaults. Fields absent from the file fall
// back to their defaults.
func LoadSettings(path string) (Settings, error) {
	cfg := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that no field is empty or contains a path separator where
// a single segment is required.
func (s Settings) Validate() error {
	if s.AppID == "" {
		return fmt.Errorf("app_id must not be empty")
	}
	if s.Marker == "" {
		return fmt.Errorf("marker must not be empty")
	}
	if strings.ContainsAny(s.Marker, `/\`) {
		return fmt.Errorf("marker must be a single path segment, got %q", s.Marker)
	}
	if s.DataEnv == "" {
		return fmt.Errorf("data_env must not be empty")
	}
	if s.ConfigEnv == "" {
		return fmt.Errorf("config_env must not be empty")
	}
	return nil
}

// DataSubdir returns the per-root relative path of the data subtree.
func (s Settings) DataSubdir() string {
	return filepath.Join("share", s.AppID)
}

// ConfigSubdir returns the per-root relative path of the config subtree.
func (s Settings) ConfigSubdir() string {
	return filepath.Join("etc", s.AppID)
}
