// Package config loads the client's configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultServerAddress is the daemon socket used when CORRAL_SERVER_ADDRESS is unset.
const DefaultServerAddress = "unix:///run/corral/corral.sock"

// SettingsFileName is the local settings file inside the config directory.
const SettingsFileName = "corral.toml"

// Config holds client configuration.
type Config struct {
	ServerAddress   string `env:"CORRAL_SERVER_ADDRESS" envDefault:"unix:///run/corral/corral.sock"`
	ConfigDir       string `env:"CORRAL_CONFIG_DIR"`
	DataDir         string `env:"CORRAL_DATA_DIR"`
	AliasScriptsDir string `env:"CORRAL_ALIAS_SCRIPTS_DIR"`
}

// Load parses the environment, fills unset directories from the user's
// config and data locations, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.ConfigDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to determine config directory: %w", err)
		}
		c.ConfigDir = filepath.Join(base, "corral")
	}
	if c.DataDir == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to determine data directory: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		c.DataDir = filepath.Join(base, "corral")
	}
	if c.AliasScriptsDir == "" {
		c.AliasScriptsDir = filepath.Join(c.DataDir, "bin")
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server address is required")
	}
	if strings.HasPrefix(c.ServerAddress, "unix://") && len(c.ServerAddress) == len("unix://") {
		return fmt.Errorf("server address %q has no socket path", c.ServerAddress)
	}

	dirs := []struct {
		name, path string
	}{
		{"config dir", c.ConfigDir},
		{"data dir", c.DataDir},
		{"alias scripts dir", c.AliasScriptsDir},
	}
	for _, d := range dirs {
		if !filepath.IsAbs(d.path) {
			return fmt.Errorf("%s must be an absolute path, got %q", d.name, d.path)
		}
	}
	return nil
}

// SettingsPath returns the local settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.ConfigDir, SettingsFileName)
}
