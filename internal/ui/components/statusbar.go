// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lorebook-tui/internal/ui/styles"
	"github.com/jeranaias/lorebook-tui/internal/util"
)

// Shortcut is one key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBarData is everything the status bar renders.
type StatusBarData struct {
	UserName     string
	NotebookName string
	Shortcuts    []Shortcut
}

// RenderStatusBar renders the bottom status bar: user and notebook on
// the left, key hints on the right, truncated to fit.
func RenderStatusBar(theme *styles.Theme, data StatusBarData, width int) string {
	var left strings.Builder
	if data.UserName != "" {
		left.WriteString(theme.StatusOnline.Render("●"))
		left.WriteString(" ")
		left.WriteString(theme.StatusUser.Render(data.UserName))
	} else {
		left.WriteString(theme.ShortcutDesc.Render("○ signed out"))
	}
	if data.NotebookName != "" {
		left.WriteString(theme.ShortcutDesc.Render("  │  "))
		left.WriteString(util.TruncateWidth(data.NotebookName, 30))
	}

	hints := make([]string, len(data.Shortcuts))
	for i, s := range data.Shortcuts {
		hints[i] = theme.ShortcutKey.Render(s.Key) + " " + theme.ShortcutDesc.Render(s.Desc)
	}
	right := strings.Join(hints, "  ")

	leftStr := left.String()
	gap := width - lipgloss.Width(leftStr) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Drop hints before truncating the identity.
		right = ""
		gap = width - lipgloss.Width(leftStr) - 2
		if gap < 0 {
			gap = 0
		}
	}

	return theme.StatusBar.Width(width).Render(leftStr + strings.Repeat(" ", gap) + right)
}
