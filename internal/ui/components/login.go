// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lorebook-tui/internal/ui/styles"
)

const logo = `
 ██╗      ██████╗ ██████╗ ███████╗██████╗  ██████╗  ██████╗ ██╗  ██╗
 ██║     ██╔═══██╗██╔══██╗██╔════╝██╔══██╗██╔═══██╗██╔═══██╗██║ ██╔╝
 ██║     ██║   ██║██████╔╝█████╗  ██████╔╝██║   ██║██║   ██║█████╔╝
 ██║     ██║   ██║██╔══██╗██╔══╝  ██╔══██╗██║   ██║██║   ██║██╔═██╗
 ███████╗╚██████╔╝██║  ██║███████╗██████╔╝╚██████╔╝╚██████╔╝██║  ██╗
 ╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚══════╝╚═════╝  ╚═════╝  ╚═════╝ ╚═╝  ╚═╝`

// RenderLogin renders the signed-out view: the logo, the login URL the
// user's browser was pointed at, and the key hints.
func RenderLogin(theme *styles.Theme, loginURL string, width, height int) string {
	var b strings.Builder

	b.WriteString(theme.WelcomeLogo.Render(logo))
	b.WriteString("\n\n")
	b.WriteString(theme.WelcomeInfo.Render("Ask questions about your own documents."))
	b.WriteString("\n\n")
	b.WriteString(theme.WelcomeKey.Render("l"))
	b.WriteString(theme.WelcomeInfo.Render(" sign in with Google    "))
	b.WriteString(theme.WelcomeKey.Render("q"))
	b.WriteString(theme.WelcomeInfo.Render(" quit"))
	if loginURL != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.WelcomeInfo.Render("Waiting for the browser sign-in at:"))
		b.WriteString("\n")
		b.WriteString(theme.WelcomeKey.Render(loginURL))
		b.WriteString("\n\n")
		b.WriteString(theme.WelcomeInfo.Render("Finish with "))
		b.WriteString(theme.WelcomeKey.Render("lorebook login"))
		b.WriteString(theme.WelcomeInfo.Render(" in another terminal,"))
		b.WriteString("\n")
		b.WriteString(theme.WelcomeInfo.Render("then press "))
		b.WriteString(theme.WelcomeKey.Render("r"))
		b.WriteString(theme.WelcomeInfo.Render(" here."))
	}

	box := theme.WelcomeBox.Render(b.String())
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// RenderLoading renders the session-probe view shown at startup.
func RenderLoading(theme *styles.Theme, spinnerView string, width, height int) string {
	text := spinnerView + " " + theme.ThinkingText.Render("Checking session...")
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
	}
	return text
}
