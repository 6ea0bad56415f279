// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lorebook-tui/internal/notebook"
	"github.com/jeranaias/lorebook-tui/internal/ui/components"
	"github.com/jeranaias/lorebook-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// OpenChatMsg asks the parent model to switch to the chat view.
type OpenChatMsg struct{}

// createdMsg carries the result of a notebook creation.
type createdMsg struct {
	id  string
	err error
}

// deletedMsg carries the result of a notebook deletion.
type deletedMsg struct {
	err error
}

// uploadDoneMsg carries the outcome of an upload batch.
type uploadDoneMsg struct {
	summary *notebook.UploadSummary
	err     error
}

// uploadProgressMsg carries one settled file from an in-flight batch.
type uploadProgressMsg struct {
	result notebook.UploadResult
}

// mode is the dashboard's input mode.
type mode int

const (
	modeList    mode = iota // browsing the notebook list
	modeDocs                // browsing the selected notebook's documents
	modeCreate              // typing a new notebook name
	modeUpload              // typing upload paths
	modeConfirm             // confirming a notebook deletion
)

// =============================================================================
// DASHBOARD MODEL
// =============================================================================

// Model is the notebook browser.
type Model struct {
	theme *styles.Theme
	store *notebook.Store

	mode      mode
	cursor    int
	docCursor int
	input     textinput.Model
	busy      bool

	// In-flight upload batch progress, fed by uploadProgressMsg.
	uploadCh      chan notebook.UploadResult
	uploadTotal   int
	uploadSettled int
	uploadLast    notebook.UploadResult

	width  int
	height int
}

// New creates the dashboard view.
func New(theme *styles.Theme, store *notebook.Store) Model {
	input := textinput.New()
	input.CharLimit = 500

	m := Model{
		theme: theme,
		store: store,
		input: input,
	}
	// Reopen the documents view when a selection was restored from the
	// previous run.
	if store.ActiveNotebook() != nil {
		m.mode = modeDocs
	}
	return m
}

// Init is a no-op; the parent drives synchronization.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetSize records the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 10
}

// InDocuments reports whether the document view is showing.
func (m *Model) InDocuments() bool {
	return m.mode == modeDocs
}

// Typing reports whether a text prompt is capturing keystrokes, so the
// parent knows not to treat letters as global shortcuts.
func (m *Model) Typing() bool {
	return m.mode == modeCreate || m.mode == modeUpload
}

// Update handles dashboard messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.updateList(msg)
		case modeDocs:
			return m.updateDocs(msg)
		case modeCreate, modeUpload:
			return m.updatePrompt(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}

	case createdMsg:
		m.busy = false
		if msg.err != nil {
			return m, components.ShowToast(components.ToastKindError, msg.err.Error())
		}
		m.store.Select(msg.id)
		m.mode = modeDocs
		m.docCursor = 0
		return m, components.ShowToast(components.ToastKindSuccess, "Notebook created")

	case deletedMsg:
		m.busy = false
		if msg.err != nil {
			return m, components.ShowToast(components.ToastKindError, msg.err.Error())
		}
		m.clampCursor()
		return m, components.ShowToast(components.ToastKindSuccess, "Notebook deleted")

	case uploadProgressMsg:
		if m.uploadTotal > 0 {
			m.uploadSettled++
			m.uploadLast = msg.result
			return m, waitForUploadResult(m.uploadCh)
		}
		return m, nil

	case uploadDoneMsg:
		m.busy = false
		m.uploadTotal = 0
		m.uploadSettled = 0
		m.uploadCh = nil
		return m, uploadToast(msg)
	}
	return m, nil
}

// updateList handles keys on the notebook list.
func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	notebooks := m.store.Notebooks()

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(notebooks)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(notebooks) {
			m.store.Select(notebooks[m.cursor].ID)
			m.mode = modeDocs
			m.docCursor = 0
		}
	case "n":
		m.mode = modeCreate
		m.input.Placeholder = "Notebook name"
		m.input.Reset()
		m.input.Focus()
		return m, textinput.Blink
	case "d":
		if m.cursor < len(notebooks) {
			m.mode = modeConfirm
		}
	}
	return m, nil
}

// updateDocs handles keys on the document view.
func (m Model) updateDocs(msg tea.KeyMsg) (Model, tea.Cmd) {
	docs := m.store.Documents()

	switch msg.String() {
	case "esc":
		m.store.Deselect()
		m.mode = modeList
		m.clampCursor()
	case "up", "k":
		if m.docCursor > 0 {
			m.docCursor--
		}
	case "down", "j":
		if m.docCursor < len(docs)-1 {
			m.docCursor++
		}
	case "u":
		if !m.busy {
			m.mode = modeUpload
			m.input.Placeholder = "Paths to upload (space separated)"
			m.input.Reset()
			m.input.Focus()
			return m, textinput.Blink
		}
	case "c", "enter":
		if err := m.store.OpenChat(); err != nil {
			return m, components.ShowToast(components.ToastKindError, err.Error())
		}
		return m, func() tea.Msg { return OpenChatMsg{} }
	case "x":
		if m.docCursor < len(docs) {
			nb := m.store.ActiveNotebook()
			if nb != nil {
				m.store.RemoveDocument(nb.ID, docs[m.docCursor].ID)
				if m.docCursor > 0 {
					m.docCursor--
				}
			}
		}
	}
	return m, nil
}

// updatePrompt handles the create and upload text prompts.
func (m Model) updatePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == modeCreate {
			m.mode = modeList
		} else {
			m.mode = modeDocs
		}
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		if value == "" {
			if m.mode == modeCreate {
				m.mode = modeList
			} else {
				m.mode = modeDocs
			}
			return m, nil
		}
		if m.mode == modeCreate {
			m.mode = modeList
			m.busy = true
			return m, m.createCmd(value)
		}
		m.mode = modeDocs
		m.busy = true
		return m, m.startUpload(strings.Fields(value))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateConfirm handles the delete confirmation.
func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		notebooks := m.store.Notebooks()
		m.mode = modeList
		if m.cursor < len(notebooks) {
			m.busy = true
			return m, m.deleteCmd(notebooks[m.cursor].ID)
		}
	case "n", "N", "esc":
		m.mode = modeList
	}
	return m, nil
}

// clampCursor keeps the list cursor inside the notebook list.
func (m *Model) clampCursor() {
	if n := len(m.store.Notebooks()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) createCmd(name string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		id, err := store.Create(context.Background(), name, "")
		return createdMsg{id: id, err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return deletedMsg{err: store.Delete(context.Background(), id)}
	}
}

// startUpload kicks off a batch upload and a channel pump that turns
// each settled file into an uploadProgressMsg for the view.
func (m *Model) startUpload(paths []string) tea.Cmd {
	ch := make(chan notebook.UploadResult, len(paths))
	m.uploadCh = ch
	m.uploadTotal = len(paths)
	m.uploadSettled = 0
	m.uploadLast = notebook.UploadResult{}

	store := m.store
	notebookID := store.ActiveNotebookID()
	batch := func() tea.Msg {
		summary, err := store.UploadFiles(context.Background(), notebookID, paths,
			func(r notebook.UploadResult) { ch <- r })
		close(ch)
		return uploadDoneMsg{summary: summary, err: err}
	}
	return tea.Batch(batch, waitForUploadResult(ch))
}

// waitForUploadResult blocks on the next settled file. A closed channel
// means the batch finished; uploadDoneMsg handles the rest.
func waitForUploadResult(ch chan notebook.UploadResult) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return uploadProgressMsg{result: r}
	}
}

// uploadToast picks the toast for an upload outcome: success, partial
// warning, or full failure.
func uploadToast(msg uploadDoneMsg) tea.Cmd {
	if msg.err != nil {
		return components.ShowToast(components.ToastKindError, msg.err.Error())
	}
	s := msg.summary
	switch {
	case s.Succeeded+s.Failed+s.Rejected == 0:
		return nil
	case s.AllFailed():
		return components.ShowToast(components.ToastKindError, "All uploads failed. Check your files.")
	case s.Partial():
		return components.ShowToast(components.ToastKindWarning, s.String())
	default:
		return components.ShowToast(components.ToastKindSuccess, s.String())
	}
}
