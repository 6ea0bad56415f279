// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// notebooks.go - Notebook listing command handler for lorebook.
//
// Command: notebooks
// Short:   List notebooks on the gateway
// Aliases: nb, list
//
// Examples:
//   lorebook notebooks
//   lorebook notebooks --json
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/lorebook-tui/internal/api"
	"github.com/jeranaias/lorebook-tui/internal/util"
)

// HandleNotebooks lists all notebooks for the signed-in user.
func HandleNotebooks(args Args) error {
	client, err := newGatewayClient(args)
	if err != nil {
		return err
	}
	if !client.HasToken() {
		return errors.New("not signed in (run 'lorebook login')")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	notebooks, err := client.ListNotebooks(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("session expired (run 'lorebook login')")
		}
		return fmt.Errorf("listing notebooks: %w", err)
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(notebooks)
	}

	if len(notebooks) == 0 {
		fmt.Println("No notebooks yet. Create one in the TUI with 'n'.")
		return nil
	}

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Notebooks (%d)", len(notebooks))))
	for _, nb := range notebooks {
		meta := fmt.Sprintf("%d docs", nb.DocumentCount)
		if age := util.FormatRelativeTime(nb.CreatedAt); age != "" {
			meta += " · " + age
		}
		fmt.Printf("  %s  %s\n",
			ValueStyle.Render(util.PadRight(nb.DisplayName(), 32)),
			DimStyle.Render(meta))
		if args.Verbose {
			fmt.Printf("      %s\n", DimStyle.Render("id: "+nb.ID))
		}
	}
	return nil
}
