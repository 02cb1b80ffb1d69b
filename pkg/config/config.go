// Package config loads the server's settings file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/0xh4ty/emacs-solidity-server/pkg/toolchain"
)

// appDir is the per-user cache subdirectory holding both cache tiers.
const appDir = "emacs-solidity-server"

// Settings are the tunables of the toolchain manager. Every field has a
// default; a settings file only needs the fields it overrides.
type Settings struct {
	// DistributionBase is the binary distribution endpoint.
	DistributionBase string `yaml:"distribution_base"`

	// CacheDir holds the rolling "latest per minor" cache; ExactCacheDir
	// holds exact-pinned versions.
	CacheDir      string `yaml:"cache_dir"`
	ExactCacheDir string `yaml:"exact_cache_dir"`

	// RetryIntervalSeconds is the fixed delay between download retries.
	// RetryMaxAttempts bounds them; 0 retries forever.
	RetryIntervalSeconds int `yaml:"retry_interval_seconds"`
	RetryMaxAttempts     int `yaml:"retry_max_attempts"`

	// RetentionDays is how long unused exact-pin binaries are kept.
	RetentionDays int `yaml:"retention_days"`

	// LogFile receives structured logs; empty means log to the terminal.
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in settings, rooted under the user cache
// directory.
func Default() Settings {
	base, err := os.UserCacheDir()
	if err != nil {
		base = ".cache"
	}

	return Settings{
		DistributionBase:     toolchain.DefaultDistBase,
		CacheDir:             filepath.Join(base, appDir, "solc"),
		ExactCacheDir:        filepath.Join(base, appDir, "solc-exact"),
		RetryIntervalSeconds: 5,
		RetentionDays:        30,
	}
}

// Load reads a settings file and applies it over the defaults.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, errors.Wrapf(err, "failed to read settings file: %s", path)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "failed to parse settings file: %s", path)
	}

	return s, nil
}

// LoadOrDefault loads path when given, otherwise returns the defaults.
func LoadOrDefault(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Retry converts the settings into a toolchain retry policy.
func (s Settings) Retry() toolchain.RetryPolicy {
	return toolchain.RetryPolicy{
		Interval:    time.Duration(s.RetryIntervalSeconds) * time.Second,
		MaxAttempts: s.RetryMaxAttempts,
	}
}

// Retention returns the exact-pin retention window.
func (s Settings) Retention() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}
