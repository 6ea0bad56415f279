// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Backend.BaseURL == "" {
		t.Error("default backend URL is empty")
	}
	if cfg.Backend.TimeoutSecs <= 0 {
		t.Error("default timeout must be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFrom_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "https://lore.example.com"
timeout_secs = 60

[ui]
theme = "light"
compact_mode = true

[watch]
enabled = true
dir = "/tmp/drop"
debounce_ms = 500
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := LoadFrom(cfg, path); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Backend.BaseURL != "https://lore.example.com" {
		t.Errorf("base_url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSecs != 60 {
		t.Errorf("timeout_secs = %d", cfg.Backend.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" || !cfg.UI.CompactMode {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Dir != "/tmp/drop" || cfg.Watch.DebounceMs != 500 {
		t.Errorf("watch = %+v", cfg.Watch)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := LoadFrom(cfg, path); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	cfg.SetDefaults()

	if cfg.Backend.BaseURL != Default().Backend.BaseURL {
		t.Errorf("backend URL lost: %q", cfg.Backend.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := LoadFrom(Default(), path); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Backend.BaseURL = "https://lore.example.com"
	cfg.UI.CompactMode = true

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded := Default()
	if err := LoadFrom(loaded, path); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Backend.BaseURL != cfg.Backend.BaseURL || !loaded.UI.CompactMode {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LOREBOOK_URL", "https://env.example.com")
	t.Setenv("LOREBOOK_TIMEOUT", "45")
	t.Setenv("LOREBOOK_THEME", "light")
	t.Setenv("LOREBOOK_WATCH_DIR", "/tmp/watch")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.BaseURL != "https://env.example.com" {
		t.Errorf("base_url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSecs != 45 {
		t.Errorf("timeout_secs = %d", cfg.Backend.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Dir != "/tmp/watch" {
		t.Errorf("watch = %+v", cfg.Watch)
	}
}

func TestApplyEnvOverrides_InvalidTimeoutIgnored(t *testing.T) {
	t.Setenv("LOREBOOK_TIMEOUT", "not-a-number")
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Backend.TimeoutSecs != Default().Backend.TimeoutSecs {
		t.Errorf("timeout_secs = %d, want default", cfg.Backend.TimeoutSecs)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Backend: BackendConfig{BaseURL: "ftp://nope", TimeoutSecs: 0},
		UI:      UIConfig{Theme: "neon"},
		Watch:   WatchConfig{Enabled: true, Dir: "", DebounceMs: -5},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	var errs ValidateErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error type = %T, want ValidateErrors", err)
	}
	if len(errs) != 4 {
		t.Errorf("got %d errors, want 4: %v", len(errs), errs)
	}
	if !strings.Contains(err.Error(), "backend.base_url") {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestValidate_AcceptsGoodConfig(t *testing.T) {
	cfg := Default()
	cfg.Watch = WatchConfig{Enabled: true, Dir: "/tmp/drop", DebounceMs: 250}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestGlobal_SetGlobal(t *testing.T) {
	// First access may lazily load; the replacement must stick after it.
	Global()
	custom := Default()
	custom.Backend.BaseURL = "https://custom.example.com"
	SetGlobal(custom)
	if got := Global(); got.Backend.BaseURL != "https://custom.example.com" {
		t.Errorf("Global().Backend.BaseURL = %q", got.Backend.BaseURL)
	}
}
