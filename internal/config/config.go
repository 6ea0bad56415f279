// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for lorebook.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.lorebook/config.toml.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete lorebook configuration.
type Config struct {
	// Backend holds connection settings for the notebook backend.
	Backend BackendConfig `toml:"backend"`

	// UI holds terminal rendering preferences.
	UI UIConfig `toml:"ui"`

	// Watch holds watched-folder auto-upload settings.
	Watch WatchConfig `toml:"watch"`
}

// BackendConfig contains backend connection configuration.
type BackendConfig struct {
	// BaseURL is the backend's base URL.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme"`
	// CompactMode reduces vertical padding in lists.
	CompactMode bool `toml:"compact_mode"`
	// MouseEnabled enables terminal mouse support.
	MouseEnabled bool `toml:"mouse_enabled"`
}

// WatchConfig contains watched-folder configuration. When enabled, files
// dropped into Dir are validated and uploaded to the active notebook.
type WatchConfig struct {
	// Enabled turns the folder watcher on.
	Enabled bool `toml:"enabled"`
	// Dir is the folder to watch. Empty disables the watcher.
	Dir string `toml:"dir"`
	// DebounceMs is how long a file must sit unchanged before upload.
	DebounceMs int `toml:"debounce_ms"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:     "http://localhost:3001",
			TimeoutSecs: 30,
		},
		UI: UIConfig{
			Theme:        "dark",
			MouseEnabled: true,
		},
		Watch: WatchConfig{
			DebounceMs: 1000,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the lorebook configuration directory (~/.lorebook).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".lorebook"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// TokenPath returns where the session credential is stored.
func TokenPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session"), nil
}

// CachePath returns where the local cache database lives.
func CachePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
// SECURITY: 0700 because the directory holds the session credential.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults when no file exists. Environment overrides apply last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFrom(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFrom loads configuration from a specific TOML file into cfg.
func LoadFrom(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// Save writes the configuration to the default config path.
// SECURITY: 0600 permissions; the file may embed a private backend URL.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to a specific path.
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# lorebook configuration file")
	fmt.Fprintln(file, "# Generated by lorebook - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS AND OVERRIDES
// =============================================================================

// SetDefaults fills in zero values with defaults. A partially written
// config file never leaves the app without a backend URL or timeout.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = def.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = def.Backend.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = def.Watch.DebounceMs
	}
}

// ApplyEnvOverrides applies environment variable overrides:
//   - LOREBOOK_URL: overrides backend.base_url
//   - LOREBOOK_TIMEOUT: overrides backend.timeout_secs
//   - LOREBOOK_THEME: overrides ui.theme
//   - LOREBOOK_WATCH_DIR: overrides watch.dir and enables the watcher
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("LOREBOOK_URL"); u != "" {
		c.Backend.BaseURL = u
	}
	if t := os.Getenv("LOREBOOK_TIMEOUT"); t != "" {
		if secs, err := strconv.Atoi(t); err == nil && secs > 0 {
			c.Backend.TimeoutSecs = secs
		}
	}
	if theme := os.Getenv("LOREBOOK_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if dir := os.Getenv("LOREBOOK_WATCH_DIR"); dir != "" {
		c.Watch.Dir = dir
		c.Watch.Enabled = true
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration, collecting every problem rather
// than stopping at the first.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Backend.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("unsupported scheme %q (use http or https)", u.Scheme),
		})
	}

	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Backend.TimeoutSecs),
		})
	}

	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("unknown theme %q (use dark or light)", c.UI.Theme),
		})
	}

	if c.Watch.Enabled && c.Watch.Dir == "" {
		errs = append(errs, ValidationError{
			Field:   "watch.dir",
			Message: "required when watch.enabled is true",
		})
	}
	if c.Watch.DebounceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce_ms",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
