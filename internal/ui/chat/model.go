// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lorebook-tui/internal/model"
	"github.com/jeranaias/lorebook-tui/internal/notebook"
	"github.com/jeranaias/lorebook-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// AnswerMsg carries the outcome of an Ask call back into the UI loop.
type AnswerMsg struct {
	Message model.ChatMessage
	Err     error
}

// CloseMsg asks the parent model to return to the dashboard.
type CloseMsg struct{}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the chat view. It reads the transcript from the notebook
// store and never mutates it directly; Ask goes through the store.
type Model struct {
	theme *styles.Theme
	store *notebook.Store

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	waiting bool
	ready   bool
	width   int
	height  int
}

// New creates the chat view.
func New(theme *styles.Theme, store *notebook.Store) Model {
	input := textinput.New()
	input.Placeholder = "Ask about your documents..."
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		theme:   theme,
		store:   store,
		input:   input,
		spinner: sp,
	}
}

// Init starts the blink cursor.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize lays out the viewport and input for the given dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	// Reserve rows for the input area and its border.
	viewportHeight := height - 4
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = width - 6
	m.RefreshTranscript()
}

// Waiting reports whether a question is in flight.
func (m *Model) Waiting() bool {
	return m.waiting
}

// RefreshTranscript re-renders the transcript into the viewport and
// scrolls to the bottom.
func (m *Model) RefreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// Update handles chat-view messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if !m.waiting {
				m.store.CloseChat()
				return m, func() tea.Msg { return CloseMsg{} }
			}
		case "enter":
			if m.waiting {
				return m, nil
			}
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			cmds = append(cmds, m.askCmd(question), m.spinner.Tick)
			return m, tea.Batch(cmds...)
		case "ctrl+l":
			if !m.waiting {
				m.store.ClearChat()
				m.RefreshTranscript()
				return m, nil
			}
		}

	case AnswerMsg:
		m.waiting = false
		m.RefreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			// The pending question lands in the store transcript
			// asynchronously; pick it up on the next tick.
			m.RefreshTranscript()
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// askCmd runs the query off the UI goroutine.
func (m Model) askCmd(question string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		answer, err := store.Ask(context.Background(), question)
		return AnswerMsg{Message: answer, Err: err}
	}
}
