// Package config loads nasfetch settings from an optional YAML file
// overlaid on built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the default
// config file location.
const EnvConfigPath = "NASFETCH_CONFIG"

// Config is the process-wide configuration, immutable once loaded.
type Config struct {
	// NASHost is the ssh destination: a config alias or user@host.
	NASHost string `yaml:"nas_host"`
	// RemoteRoot is the absolute remote directory browsing starts in.
	RemoteRoot string `yaml:"remote_root"`
	// LocalDest is the local download destination, tilde-expandable.
	LocalDest string `yaml:"local_dest"`
	// UseRsync selects rsync over scp/sftp for downloads.
	UseRsync bool `yaml:"use_rsync"`
	// NativeSSH uses the built-in SSH client instead of the ssh binary.
	NativeSSH bool `yaml:"native_ssh"`
	// Verbose logs executed commands to stderr.
	Verbose bool `yaml:"verbose"`
}

// Default returns the built-in configuration, used unchanged when no
// config file exists.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		NASHost:    "indonas_lan",
		RemoteRoot: "/mnt/media1/Games",
		LocalDest:  filepath.Join(home, "Downloads"),
		UseRsync:   true,
	}
}

// Path returns the config file location, honoring $NASFETCH_CONFIG.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return ExpandTilde(p)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "nasfetch", "config.yaml")
}

// Load overlays the file at path, if it exists, on the defaults. Keys the
// file does not set keep their default values; unknown keys are ignored.
// A missing file is not an error, a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Finalize expands the destination path and validates the result. It is
// idempotent, so callers may run it again after applying flag overrides.
func (c *Config) Finalize() error {
	c.LocalDest = ExpandTilde(c.LocalDest)

	if c.NASHost == "" {
		return fmt.Errorf("config: nas_host must not be empty")
	}
	if !strings.HasPrefix(c.RemoteRoot, "/") {
		return fmt.Errorf("config: remote_root must be an absolute path, got %q", c.RemoteRoot)
	}
	if c.LocalDest == "" {
		return fmt.Errorf("config: local_dest must not be empty")
	}
	return nil
}

// ExpandTilde resolves a leading ~ against the user's home directory.
func ExpandTilde(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
