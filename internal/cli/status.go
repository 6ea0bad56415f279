// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command handler for lorebook.
//
// Command: status
// Short:   Show gateway health and session state
// Aliases: s
//
// Examples:
//   lorebook status
//   lorebook status --json
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/lorebook-tui/internal/api"
	"github.com/jeranaias/lorebook-tui/internal/config"
)

// statusReport is the JSON shape of `lorebook status --json`.
type statusReport struct {
	GatewayURL    string `json:"gatewayUrl"`
	GatewayOnline bool   `json:"gatewayOnline"`
	GatewayError  string `json:"gatewayError,omitempty"`
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
	Notebooks     int    `json:"notebooks"`
}

// HandleStatus probes the gateway and the current session and prints a report.
func HandleStatus(args Args) error {
	client, err := newGatewayClient(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	report := statusReport{GatewayURL: client.BaseURL()}

	if err := client.Health(ctx); err != nil {
		report.GatewayError = err.Error()
	} else {
		report.GatewayOnline = true
	}

	if report.GatewayOnline && client.HasToken() {
		profile, err := client.ProbeSession(ctx)
		switch {
		case err == nil && profile != nil:
			report.Authenticated = true
			report.User = profile.DisplayName
		case errors.Is(err, api.ErrUnauthorized):
			// Stale token; leave Authenticated false.
		case err != nil:
			fmt.Fprintf(os.Stderr, "Warning: session probe failed: %v\n", err)
		}
	}

	if report.Authenticated {
		if notebooks, err := client.ListNotebooks(ctx); err == nil {
			report.Notebooks = len(notebooks)
		}
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println(TitleStyle.Render("lorebook status"))
	fmt.Printf("%s %s\n", LabelStyle.Render("Gateway"), ValueStyle.Render(report.GatewayURL))
	if report.GatewayOnline {
		fmt.Printf("%s %s\n", LabelStyle.Render("Health"), SuccessStyle.Render("online"))
	} else {
		fmt.Printf("%s %s\n", LabelStyle.Render("Health"),
			ErrorStyle.Render("unreachable")+" "+DimStyle.Render(report.GatewayError))
	}

	switch {
	case report.Authenticated:
		fmt.Printf("%s %s\n", LabelStyle.Render("Session"),
			SuccessStyle.Render("signed in")+" "+ValueStyle.Render(report.User))
		fmt.Printf("%s %s\n", LabelStyle.Render("Notebooks"), ValueStyle.Render(fmt.Sprintf("%d", report.Notebooks)))
	case client.HasToken():
		fmt.Printf("%s %s\n", LabelStyle.Render("Session"),
			WarnStyle.Render("token present but not accepted")+" "+DimStyle.Render("(run 'lorebook login')"))
	default:
		fmt.Printf("%s %s\n", LabelStyle.Render("Session"),
			ValueStyle.Render("signed out")+" "+DimStyle.Render("(run 'lorebook login')"))
	}

	// Watch folder status comes from config, not the gateway.
	cfg := config.Global()
	if cfg.Watch.Enabled {
		fmt.Printf("%s %s\n", LabelStyle.Render("Watch folder"), ValueStyle.Render(cfg.Watch.Dir))
	}
	return nil
}
