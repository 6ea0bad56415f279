// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command handler for lorebook.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display current configuration
//   get <key>           Print a single value
//   set <key> <value>   Set a configuration value
//   path                Show configuration file path
//
// Examples:
//   lorebook config
//   lorebook config get backend.url
//   lorebook config set backend.url https://gateway.example.com
//   lorebook config set watch.dir ~/Documents/lorebook-inbox
//   lorebook config path
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jeranaias/lorebook-tui/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "show", "":
		return configShow()
	case "get":
		return configGet(args.ConfigKey)
	case "set":
		return configSet(args.ConfigKey, args.ConfigVal)
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s (want show, get, set or path)", args.Subcommand)
	}
}

func configShow() error {
	cfg := config.Global()

	fmt.Println(TitleStyle.Render("lorebook configuration"))
	fmt.Printf("%s %s\n", LabelStyle.Render("backend.url"), ValueStyle.Render(cfg.Backend.BaseURL))
	fmt.Printf("%s %s\n", LabelStyle.Render("backend.timeout"), ValueStyle.Render(strconv.Itoa(cfg.Backend.TimeoutSecs)))
	fmt.Printf("%s %s\n", LabelStyle.Render("ui.theme"), ValueStyle.Render(cfg.UI.Theme))
	fmt.Printf("%s %s\n", LabelStyle.Render("ui.compact_mode"), ValueStyle.Render(strconv.FormatBool(cfg.UI.CompactMode)))
	fmt.Printf("%s %s\n", LabelStyle.Render("ui.mouse_enabled"), ValueStyle.Render(strconv.FormatBool(cfg.UI.MouseEnabled)))
	fmt.Printf("%s %s\n", LabelStyle.Render("watch.enabled"), ValueStyle.Render(strconv.FormatBool(cfg.Watch.Enabled)))
	fmt.Printf("%s %s\n", LabelStyle.Render("watch.dir"), ValueStyle.Render(cfg.Watch.Dir))
	fmt.Printf("%s %s\n", LabelStyle.Render("watch.debounce_ms"), ValueStyle.Render(strconv.Itoa(cfg.Watch.DebounceMs)))

	if path, err := config.ConfigPath(); err == nil {
		fmt.Printf("\n%s\n", DimStyle.Render("File: "+path))
	}
	return nil
}

func configGet(key string) error {
	if key == "" {
		return errors.New("usage: lorebook config get <key>")
	}
	cfg := config.Global()
	value, err := lookupKey(cfg, key)
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func configSet(key, value string) error {
	if key == "" || value == "" {
		return errors.New("usage: lorebook config set <key> <value>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := applyKey(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	config.SetGlobal(cfg)

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// lookupKey resolves a dotted config key to its current value.
func lookupKey(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "backend.url":
		return cfg.Backend.BaseURL, nil
	case "backend.timeout":
		return strconv.Itoa(cfg.Backend.TimeoutSecs), nil
	case "ui.theme":
		return cfg.UI.Theme, nil
	case "ui.compact_mode":
		return strconv.FormatBool(cfg.UI.CompactMode), nil
	case "ui.mouse_enabled":
		return strconv.FormatBool(cfg.UI.MouseEnabled), nil
	case "watch.enabled":
		return strconv.FormatBool(cfg.Watch.Enabled), nil
	case "watch.dir":
		return cfg.Watch.Dir, nil
	case "watch.debounce_ms":
		return strconv.Itoa(cfg.Watch.DebounceMs), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// applyKey sets a dotted config key, parsing the value per field type.
func applyKey(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "backend.url":
		cfg.Backend.BaseURL = value
	case "backend.timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("backend.timeout must be a number of seconds: %q", value)
		}
		cfg.Backend.TimeoutSecs = n
	case "ui.theme":
		cfg.UI.Theme = strings.ToLower(value)
	case "ui.compact_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.compact_mode must be true or false: %q", value)
		}
		cfg.UI.CompactMode = b
	case "ui.mouse_enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.mouse_enabled must be true or false: %q", value)
		}
		cfg.UI.MouseEnabled = b
	case "watch.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("watch.enabled must be true or false: %q", value)
		}
		cfg.Watch.Enabled = b
	case "watch.dir":
		cfg.Watch.Dir = expandHome(value)
	case "watch.debounce_ms":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("watch.debounce_ms must be a number of milliseconds: %q", value)
		}
		cfg.Watch.DebounceMs = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// expandHome expands a leading ~ so watch dirs set from the shell work.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
