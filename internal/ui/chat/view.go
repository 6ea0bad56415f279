// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lorebook-tui/internal/model"
)

// View renders the chat view: transcript viewport over the input area.
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	prompt := m.theme.InputPrompt.Render("? ")
	if m.waiting {
		prompt = m.spinner.View() + " "
	}
	b.WriteString(m.theme.InputContainer.Width(m.width).Render(prompt + m.input.View()))
	return b.String()
}

// renderTranscript renders the full conversation for the viewport.
func (m Model) renderTranscript() string {
	history := m.store.History()
	if len(history) == 0 {
		nb := m.store.ActiveNotebook()
		name := "this notebook"
		if nb != nil {
			name = nb.DisplayName()
		}
		return m.theme.ThinkingText.Render("Ask a question about " + name + ".")
	}

	bubbleWidth := m.width - 8
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var parts []string
	for _, msg := range history {
		switch msg.Role {
		case model.RoleUser:
			bubble := m.theme.QuestionBubble.MaxWidth(bubbleWidth).Render(msg.Content)
			parts = append(parts, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, bubble))
		case model.RoleAssistant:
			parts = append(parts, m.renderAnswer(msg, bubbleWidth))
		}
	}
	return strings.Join(parts, "\n\n")
}

// renderAnswer renders an assistant message as markdown plus its
// source citations.
func (m Model) renderAnswer(msg model.ChatMessage, width int) string {
	body := m.renderMarkdown(msg.Content, width-6)
	bubble := m.theme.AnswerBubble.MaxWidth(width).Render(body)

	if len(msg.Sources) == 0 {
		return bubble
	}

	var b strings.Builder
	b.WriteString("Sources")
	for _, src := range msg.Sources {
		b.WriteString("\n")
		b.WriteString(m.theme.SourceName.Render(src.Filename))
		if src.Excerpt != "" {
			b.WriteString("  ")
			b.WriteString(truncateExcerpt(src.Excerpt, 80))
		}
	}
	sources := m.theme.SourcesBlock.MaxWidth(width).Render(b.String())
	return bubble + "\n" + sources
}

// renderMarkdown renders answer markdown with glamour, falling back to
// the raw text when rendering fails.
func (m Model) renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}

func truncateExcerpt(s string, maxRunes int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes-3]) + "..."
}
