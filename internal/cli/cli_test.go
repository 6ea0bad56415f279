// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/jeranaias/lorebook-tui/internal/config"
)

func TestParseGlobalFlags(t *testing.T) {
	remaining, args := parseGlobalFlags([]string{
		"--json", "--url", "https://gw.example.com", "status", "-q",
	})

	if !args.JSON {
		t.Error("expected JSON flag to be set")
	}
	if !args.Quiet {
		t.Error("expected Quiet flag to be set")
	}
	if args.URL != "https://gw.example.com" {
		t.Errorf("URL = %q, want gateway URL", args.URL)
	}
	if len(remaining) != 1 || remaining[0] != "status" {
		t.Errorf("remaining = %v, want [status]", remaining)
	}
}

func TestParseAskArgs(t *testing.T) {
	tests := []struct {
		name         string
		input        []string
		wantQuery    string
		wantNotebook string
	}{
		{
			name:      "plain question",
			input:     []string{"what", "is", "this"},
			wantQuery: "what is this",
		},
		{
			name:         "notebook flag",
			input:        []string{"--notebook", "Research", "summarize"},
			wantQuery:    "summarize",
			wantNotebook: "Research",
		},
		{
			name:         "short notebook flag after question",
			input:        []string{"summarize", "-n", "Research"},
			wantQuery:    "summarize",
			wantNotebook: "Research",
		},
		{
			name:      "unknown flag ignored",
			input:     []string{"--stream", "hello"},
			wantQuery: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args Args
			parseAskArgs(&args, tt.input)
			if args.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", args.Query, tt.wantQuery)
			}
			if args.Notebook != tt.wantNotebook {
				t.Errorf("Notebook = %q, want %q", args.Notebook, tt.wantNotebook)
			}
		})
	}
}

func TestParseConfigArgs(t *testing.T) {
	var args Args
	parseConfigArgs(&args, nil)
	if args.Subcommand != "show" {
		t.Errorf("empty config args: subcommand = %q, want show", args.Subcommand)
	}

	args = Args{}
	parseConfigArgs(&args, []string{"set", "backend.url", "https://gw.example.com"})
	if args.Subcommand != "set" || args.ConfigKey != "backend.url" || args.ConfigVal != "https://gw.example.com" {
		t.Errorf("parsed %q %q %q", args.Subcommand, args.ConfigKey, args.ConfigVal)
	}
}

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"stauts", "status"},
		{"logn", "login"},
		{"notebook", "notebooks"},
		{"xyzzyplugh", ""},
	}

	for _, tt := range tests {
		if got := SuggestCommand(tt.input); got != tt.want {
			t.Errorf("SuggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"ask", "ask", 0},
		{"ask", "asks", 1},
		{"login", "logout", 3},
		{"", "abc", 3},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestApplyAndLookupKey(t *testing.T) {
	cfg := config.Default()

	if err := applyKey(cfg, "backend.timeout", "45"); err != nil {
		t.Fatalf("applyKey: %v", err)
	}
	if cfg.Backend.TimeoutSecs != 45 {
		t.Errorf("TimeoutSecs = %d, want 45", cfg.Backend.TimeoutSecs)
	}

	if err := applyKey(cfg, "watch.enabled", "true"); err != nil {
		t.Fatalf("applyKey: %v", err)
	}
	got, err := lookupKey(cfg, "watch.enabled")
	if err != nil {
		t.Fatalf("lookupKey: %v", err)
	}
	if got != "true" {
		t.Errorf("watch.enabled = %q, want true", got)
	}

	if err := applyKey(cfg, "backend.timeout", "soon"); err == nil {
		t.Error("expected error for non-numeric timeout")
	}
	if err := applyKey(cfg, "no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := lookupKey(cfg, "no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}
}
