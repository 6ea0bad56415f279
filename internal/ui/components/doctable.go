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

// Column widths for the fixed part of the document table. The title
// column absorbs whatever is left.
const (
	docSizeWidth = 10
	docAgeWidth  = 12
)

// RenderDocumentTable renders the active notebook's documents with the
// cursor row highlighted.
func RenderDocumentTable(theme *styles.Theme, docs []model.Document, cursor, width int) string {
	if len(docs) == 0 {
		return theme.DocMeta.Render("No documents yet. Press 'u' to upload.")
	}

	titleWidth := width - docSizeWidth - docAgeWidth - 6
	if titleWidth < 12 {
		titleWidth = 12
	}

	var b strings.Builder
	header := fmt.Sprintf("  %s%s%s",
		util.PadRight("TITLE", titleWidth),
		util.PadRight("SIZE", docSizeWidth),
		"ADDED")
	b.WriteString(theme.DocHeader.Render(header))
	b.WriteString("\n")

	for i, doc := range docs {
		row := fmt.Sprintf("%s%s%s",
			util.PadRight(util.TruncateWidth(doc.DisplayTitle(), titleWidth-2), titleWidth),
			util.PadRight(util.FormatBytes(doc.Metadata.Size), docSizeWidth),
			util.FormatRelativeTime(doc.CreatedAt))
		if i == cursor {
			b.WriteString(theme.DocRowSelected.Render("▸ " + row))
		} else {
			b.WriteString(theme.DocRow.Render("  " + row))
		}
		if i < len(docs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
