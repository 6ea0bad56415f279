// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/lorebook-tui/internal/model"
	"github.com/jeranaias/lorebook-tui/internal/ui/styles"
	"github.com/jeranaias/lorebook-tui/internal/util"
)

// RenderNotebookList renders the home screen's notebook list with the
// cursor row highlighted.
func RenderNotebookList(theme *styles.Theme, notebooks []model.Notebook, cursor, width int) string {
	if len(notebooks) == 0 {
		return theme.NotebookMeta.Render("No notebooks yet. Press 'n' to create one.")
	}

	var b strings.Builder
	for i, nb := range notebooks {
		line := formatNotebookLine(nb, width-6)
		if i == cursor {
			b.WriteString(theme.NotebookItemSelected.Render("▸ " + line))
		} else {
			b.WriteString(theme.NotebookItem.Render("  " + line))
		}
		if i < len(notebooks)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatNotebookLine renders one notebook row: name, document count, age.
func formatNotebookLine(nb model.Notebook, width int) string {
	docs := fmt.Sprintf("%d docs", nb.DocumentCount)
	if nb.DocumentCount == 1 {
		docs = "1 doc"
	}

	meta := docs
	if age := util.FormatRelativeTime(nb.CreatedAt); age != "" {
		meta += " · " + age
	}

	name := nb.DisplayName()
	nameWidth := width - util.StringWidth(meta) - 2
	if nameWidth < 8 {
		return util.TruncateWidth(name, width)
	}
	return util.PadRight(util.TruncateWidth(name, nameWidth), nameWidth) + "  " + meta
}
