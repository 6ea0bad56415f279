// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"fmt"
	"strings"

	"github.com/jeranaias/lorebook-tui/internal/notebook"
	"github.com/jeranaias/lorebook-tui/internal/ui/components"
)

// View renders the dashboard in its current mode.
func (m Model) View() string {
	var b strings.Builder

	switch m.mode {
	case modeList, modeCreate, modeConfirm:
		b.WriteString(m.theme.HeaderTitle.Render("Notebooks"))
		b.WriteString("\n\n")
		b.WriteString(components.RenderNotebookList(m.theme, m.store.Notebooks(), m.cursor, m.width))
	case modeDocs, modeUpload:
		nb := m.store.ActiveNotebook()
		title := "Documents"
		if nb != nil {
			title = nb.DisplayName()
		}
		b.WriteString(m.theme.HeaderTitle.Render(title))
		if nb != nil && nb.Description != "" {
			b.WriteString("  ")
			b.WriteString(m.theme.HeaderSubtitle.Render(nb.Description))
		}
		b.WriteString("\n\n")
		b.WriteString(components.RenderDocumentTable(m.theme, m.store.Documents(), m.docCursor, m.width))
	}

	switch m.mode {
	case modeCreate, modeUpload:
		b.WriteString("\n\n")
		b.WriteString(m.theme.InputContainer.Width(m.width).Render(
			m.theme.InputPrompt.Render("> ") + m.input.View()))
	case modeConfirm:
		notebooks := m.store.Notebooks()
		if m.cursor < len(notebooks) {
			b.WriteString("\n\n")
			b.WriteString(m.theme.HeaderSubtitle.Render(
				"Delete \"" + notebooks[m.cursor].DisplayName() + "\" and its documents? (y/n)"))
		}
	}

	if m.busy {
		b.WriteString("\n\n")
		b.WriteString(m.theme.ThinkingText.Render(m.busyLine()))
	}
	return b.String()
}

// busyLine describes the in-flight operation: upload batches show the
// settled count and the last file's outcome, everything else a generic
// working notice.
func (m Model) busyLine() string {
	if m.uploadTotal == 0 {
		return "Working..."
	}
	line := fmt.Sprintf("Uploading %d/%d", m.uploadSettled, m.uploadTotal)
	if m.uploadLast.FileName == "" {
		return line + "..."
	}
	switch m.uploadLast.Status {
	case notebook.UploadSucceeded:
		return fmt.Sprintf("%s  ✓ %s", line, m.uploadLast.FileName)
	default:
		return fmt.Sprintf("%s  ✗ %s", line, m.uploadLast.FileName)
	}
}

// Shortcuts returns the status bar hints for the current mode.
func (m Model) Shortcuts() []components.Shortcut {
	switch m.mode {
	case modeList:
		return []components.Shortcut{
			{Key: "↑/↓", Desc: "move"},
			{Key: "enter", Desc: "open"},
			{Key: "n", Desc: "new"},
			{Key: "d", Desc: "delete"},
			{Key: "L", Desc: "logout"},
			{Key: "q", Desc: "quit"},
		}
	case modeDocs:
		return []components.Shortcut{
			{Key: "c", Desc: "chat"},
			{Key: "u", Desc: "upload"},
			{Key: "x", Desc: "remove"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	default:
		return []components.Shortcut{
			{Key: "enter", Desc: "confirm"},
			{Key: "esc", Desc: "cancel"},
		}
	}
}
