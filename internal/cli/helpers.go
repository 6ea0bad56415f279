// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared wiring for the one-shot CLI commands.
package cli

import (
	"fmt"
	"time"

	"github.com/jeranaias/lorebook-tui/internal/api"
	"github.com/jeranaias/lorebook-tui/internal/config"
)

// newGatewayClient builds an api.Client from the global config, a --url
// override, and the persisted session token (when one exists).
func newGatewayClient(args Args) (*api.Client, error) {
	cfg := config.Global()

	baseURL := cfg.Backend.BaseURL
	if args.URL != "" {
		baseURL = args.URL
	}

	client := api.NewClient(baseURL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second)

	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, fmt.Errorf("resolving token path: %w", err)
	}
	token, err := api.LoadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("loading session token: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}
	return client, nil
}
