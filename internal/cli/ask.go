// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot query command handler for lorebook.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering for better CLI experience
//
// Sends a single question to the active notebook and renders the answer
// to stdout. The active notebook is the one last selected in the TUI;
// --notebook overrides it by name.
//
// Command: ask [question]
// Short:   Ask the active notebook a single question
//
// Examples:
//   lorebook ask "What deadlines does the contract mention?"
//   lorebook ask --notebook "Research" "Summarize the findings"
//   lorebook ask --json "List the key dates"
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/lorebook-tui/internal/api"
	"github.com/jeranaias/lorebook-tui/internal/cache"
	"github.com/jeranaias/lorebook-tui/internal/config"
	"github.com/jeranaias/lorebook-tui/internal/util"
)

// askTimeout bounds one query round-trip; notebook queries can take a
// while on large document sets.
const askTimeout = 120 * time.Second

// HandleAsk runs a one-shot query against a notebook.
func HandleAsk(args Args) error {
	question := strings.TrimSpace(args.Query)
	if question == "" {
		return errors.New("no question given (usage: lorebook ask \"question\")")
	}

	client, err := newGatewayClient(args)
	if err != nil {
		return err
	}
	if !client.HasToken() {
		return errors.New("not signed in (run 'lorebook login')")
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	notebookID, displayName, err := resolveNotebook(ctx, client, args.Notebook)
	if err != nil {
		return err
	}

	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "Asking %s...\n", displayName)
	}

	result, err := client.QueryNotebook(ctx, notebookID, question)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("session expired (run 'lorebook login')")
		}
		return fmt.Errorf("query failed: %w", err)
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(renderAnswer(result.Answer))
	if len(result.SourceDocuments) > 0 {
		fmt.Println(DimStyle.Render("Sources:"))
		for _, src := range result.SourceDocuments {
			line := "  • " + src.Filename
			if src.Excerpt != "" {
				line += " — " + util.TruncateRunes(strings.ReplaceAll(src.Excerpt, "\n", " "), 80)
			}
			fmt.Println(DimStyle.Render(line))
		}
	}
	return nil
}

// resolveNotebook picks the target notebook: an explicit --notebook name,
// else the active notebook cached by the TUI, else the only notebook when
// exactly one exists.
func resolveNotebook(ctx context.Context, client *api.Client, name string) (id, displayName string, err error) {
	notebooks, err := client.ListNotebooks(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return "", "", errors.New("session expired (run 'lorebook login')")
		}
		return "", "", fmt.Errorf("listing notebooks: %w", err)
	}
	if len(notebooks) == 0 {
		return "", "", errors.New("no notebooks exist yet; create one in the TUI first")
	}

	if name != "" {
		for _, nb := range notebooks {
			if strings.EqualFold(nb.Name, name) {
				return nb.ID, nb.DisplayName(), nil
			}
		}
		return "", "", fmt.Errorf("no notebook named %q", name)
	}

	if activeID := cachedActiveNotebook(); activeID != "" {
		for _, nb := range notebooks {
			if nb.ID == activeID {
				return nb.ID, nb.DisplayName(), nil
			}
		}
	}

	if len(notebooks) == 1 {
		return notebooks[0].ID, notebooks[0].DisplayName(), nil
	}
	return "", "", errors.New("no active notebook; select one in the TUI or pass --notebook NAME")
}

// cachedActiveNotebook reads the TUI's last selection from the local cache.
// Any cache failure degrades to "no selection".
func cachedActiveNotebook() string {
	path, err := config.CachePath()
	if err != nil {
		return ""
	}
	store, err := cache.Open(path)
	if err != nil {
		return ""
	}
	defer store.Close()

	id, err := store.ActiveNotebook()
	if err != nil {
		return ""
	}
	return id
}

// renderAnswer renders markdown for TTY output, falling back to the raw
// text when rendering fails or output is piped.
func renderAnswer(answer string) string {
	if !IsStdoutTTY() {
		return answer
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()-2),
	)
	if err != nil {
		return answer
	}
	out, err := renderer.Render(answer)
	if err != nil {
		return answer
	}
	return strings.TrimRight(out, "\n") + "\n"
}
