// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; DSNs go to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"dsbench/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel    string                  `json:"log_level"`
	Concurrency int                     `json:"concurrency"`
	Scale       int                     `json:"scale"`
	Image       string                  `json:"image,omitempty"`
	Targets     map[string]TargetConfig `json:"targets,omitempty"`
}

// TargetConfig is per-target connection bookkeeping. The DSN itself lives in
// the keychain; this only records that one was configured.
type TargetConfig struct {
	Provided bool `json:"provided"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	var c Config
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.LogLevel = "info"
			c.Concurrency = 4
			c.Scale = 1
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// MarkTarget records that a DSN was stored for target.
func MarkTarget(c *Config, target string) {
	if c.Targets == nil {
		c.Targets = make(map[string]TargetConfig)
	}
	c.Targets[target] = TargetConfig{Provided: true}
}
