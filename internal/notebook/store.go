// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notebook

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/jeranaias/lorebook-tui/internal/api"
	"github.com/jeranaias/lorebook-tui/internal/model"
)

// answerFailureText is shown in place of an answer when a query fails.
// The real error goes to the toast and the log, not the transcript.
const answerFailureText = "Sorry, I encountered an error while processing your question. Please try again."

// Gateway is the slice of the backend client the notebook store needs.
type Gateway interface {
	ListNotebooks(ctx context.Context) ([]model.Notebook, error)
	CreateNotebook(ctx context.Context, name, description string) (*model.Notebook, error)
	DeleteNotebook(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, notebookID string) ([]model.Document, error)
	UploadDocument(ctx context.Context, notebookID string, content []byte, fileName, mimeType string) (*model.Document, error)
	QueryNotebook(ctx context.Context, notebookID, question string) (*api.QueryResult, error)
}

// Cache persists client-owned state between runs: the selected notebook,
// whether the chat view was open, and chat transcripts. Cache failures
// never fail an operation; they only cost persistence.
type Cache interface {
	ActiveNotebook() (string, error)
	SetActiveNotebook(id string) error
	ChatOpen() (bool, error)
	SetChatOpen(open bool) error
	History(notebookID string) ([]model.ChatMessage, error)
	AppendMessage(notebookID string, msg model.ChatMessage) error
	ClearHistory(notebookID string) error
	DeleteNotebook(notebookID string) error
	Reset() error
}

// =============================================================================
// NOTEBOOK STORE
// =============================================================================

// Store is the client's view of the user's notebooks. All methods are
// safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	gateway Gateway
	cache   Cache

	notebooks []model.Notebook
	documents map[string][]model.Document
	history   map[string][]model.ChatMessage
	activeID  string
	chatOpen  bool
	synced    bool
}

// NewStore creates an empty notebook store.
func NewStore(gateway Gateway, cache Cache) *Store {
	return &Store{
		gateway:   gateway,
		cache:     cache,
		documents: make(map[string][]model.Document),
		history:   make(map[string][]model.ChatMessage),
	}
}

// =============================================================================
// SYNCHRONIZATION
// =============================================================================

// Synchronize loads the server's notebooks and documents, then restores
// client-owned state from the local cache.
//
// The merge runs in two phases. Phase one takes the server's notebook
// list as authoritative and fetches each notebook's documents (a failed
// document fetch degrades that notebook to an empty list rather than
// failing the sync). Phase two restores the cached selection and
// transcripts, but only for notebooks the server still knows about:
// cached state for a notebook deleted elsewhere is discarded.
func (s *Store) Synchronize(ctx context.Context) error {
	notebooks, err := s.gateway.ListNotebooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load notebooks: %w", err)
	}

	documents := make(map[string][]model.Document, len(notebooks))
	for _, nb := range notebooks {
		docs, err := s.gateway.ListDocuments(ctx, nb.ID)
		if err != nil {
			log.Printf("notebook: failed to load documents for %s: %v", nb.ID, err)
			docs = nil
		}
		documents[nb.ID] = docs
	}

	known := make(map[string]bool, len(notebooks))
	for _, nb := range notebooks {
		known[nb.ID] = true
	}

	activeID := ""
	if cached, err := s.cache.ActiveNotebook(); err != nil {
		log.Printf("notebook: cache read failed: %v", err)
	} else if known[cached] {
		activeID = cached
	}

	chatOpen := false
	if open, err := s.cache.ChatOpen(); err == nil {
		chatOpen = open
	}

	history := make(map[string][]model.ChatMessage, len(notebooks))
	for _, nb := range notebooks {
		msgs, err := s.cache.History(nb.ID)
		if err != nil {
			log.Printf("notebook: cached transcript for %s unreadable: %v", nb.ID, err)
			continue
		}
		if len(msgs) > 0 {
			history[nb.ID] = msgs
		}
	}

	s.mu.Lock()
	s.notebooks = notebooks
	s.documents = documents
	s.history = history
	s.activeID = activeID
	s.chatOpen = chatOpen && activeID != ""
	s.synced = true
	s.mu.Unlock()

	log.Printf("notebook: synchronized %d notebooks", len(notebooks))
	return nil
}

// Reset discards all client state, including the local cache. Called on
// logout so the next user starts clean.
func (s *Store) Reset() {
	s.mu.Lock()
	s.notebooks = nil
	s.documents = make(map[string][]model.Document)
	s.history = make(map[string][]model.ChatMessage)
	s.activeID = ""
	s.chatOpen = false
	s.synced = false
	s.mu.Unlock()

	if err := s.cache.Reset(); err != nil {
		log.Printf("notebook: cache reset failed: %v", err)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Synced reports whether Synchronize has completed since startup or the
// last reset.
func (s *Store) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// Notebooks returns a copy of the notebook list.
func (s *Store) Notebooks() []model.Notebook {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notebook, len(s.notebooks))
	copy(out, s.notebooks)
	return out
}

// ActiveNotebook returns the selected notebook, or nil when none is
// selected.
func (s *Store) ActiveNotebook() *model.Notebook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.activeID)
}

// findLocked returns a copy of the notebook with the given ID.
// Caller must hold s.mu.
func (s *Store) findLocked(id string) *model.Notebook {
	for i := range s.notebooks {
		if s.notebooks[i].ID == id {
			nb := s.notebooks[i]
			return &nb
		}
	}
	return nil
}

// ActiveNotebookID returns the selected notebook's ID, or "" when no
// selection exists or the selected id is not in the notebook list.
func (s *Store) ActiveNotebookID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKnownLocked()
}

// activeKnownLocked resolves the active id against the notebook list,
// returning "" for a selection the server does not know.
// Caller must hold s.mu.
func (s *Store) activeKnownLocked() string {
	if s.findLocked(s.activeID) == nil {
		return ""
	}
	return s.activeID
}

// Documents returns the active notebook's documents.
func (s *Store) Documents() []model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.documents[s.activeID]
	out := make([]model.Document, len(docs))
	copy(out, docs)
	return out
}

// History returns the active notebook's chat transcript.
func (s *Store) History() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.history[s.activeID]
	out := make([]model.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

// ChatOpen reports whether the chat view is open for the active notebook.
func (s *Store) ChatOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatOpen && s.activeKnownLocked() != ""
}

// =============================================================================
// NOTEBOOK OPERATIONS
// =============================================================================

// Create creates a notebook on the server and adds it to the local list.
// Returns the new notebook's ID.
func (s *Store) Create(ctx context.Context, name, description string) (string, error) {
	if err := ValidateNotebookName(name); err != nil {
		return "", err
	}

	nb, err := s.gateway.CreateNotebook(ctx, name, description)
	if err != nil {
		return "", fmt.Errorf("failed to create notebook: %w", err)
	}

	s.mu.Lock()
	s.notebooks = append(s.notebooks, *nb)
	s.documents[nb.ID] = nil
	s.mu.Unlock()

	log.Printf("notebook: created %s", nb.ID)
	return nb.ID, nil
}

// Select makes a notebook the active one. The selection is persisted so
// the next run reopens the same notebook.
//
// The id is not validated: an id the server does not know simply behaves
// as no selection. The accessors resolve the active notebook against the
// current list on every read.
func (s *Store) Select(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()

	if err := s.cache.SetActiveNotebook(id); err != nil {
		log.Printf("notebook: failed to persist selection: %v", err)
	}
}

// Deselect clears the active notebook and closes the chat view.
func (s *Store) Deselect() {
	s.mu.Lock()
	s.activeID = ""
	s.chatOpen = false
	s.mu.Unlock()

	if err := s.cache.SetActiveNotebook(""); err != nil {
		log.Printf("notebook: failed to persist selection: %v", err)
	}
	if err := s.cache.SetChatOpen(false); err != nil {
		log.Printf("notebook: failed to persist chat state: %v", err)
	}
}

// Delete removes a notebook on the server, then locally. The server call
// runs first: if it fails, local state is untouched and the error is
// returned.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.gateway.DeleteNotebook(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notebook: %w", err)
	}

	s.mu.Lock()
	for i := range s.notebooks {
		if s.notebooks[i].ID == id {
			s.notebooks = append(s.notebooks[:i], s.notebooks[i+1:]...)
			break
		}
	}
	delete(s.documents, id)
	delete(s.history, id)
	wasActive := s.activeID == id
	if wasActive {
		s.activeID = ""
		s.chatOpen = false
	}
	s.mu.Unlock()

	if err := s.cache.DeleteNotebook(id); err != nil {
		log.Printf("notebook: cache cleanup for %s failed: %v", id, err)
	}
	if wasActive {
		if err := s.cache.SetActiveNotebook(""); err != nil {
			log.Printf("notebook: failed to persist selection: %v", err)
		}
	}

	log.Printf("notebook: deleted %s", id)
	return nil
}

// =============================================================================
// DOCUMENT OPERATIONS
// =============================================================================

// RefreshDocuments re-fetches a notebook's documents from the server and
// reconciles the notebook's document count.
func (s *Store) RefreshDocuments(ctx context.Context, notebookID string) error {
	docs, err := s.gateway.ListDocuments(ctx, notebookID)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	s.mu.Lock()
	s.documents[notebookID] = docs
	for i := range s.notebooks {
		if s.notebooks[i].ID == notebookID {
			s.notebooks[i].DocumentCount = len(docs)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// RemoveDocument removes a document from the local list only. The
// backend has no document deletion endpoint; the record reappears on the
// next synchronize.
func (s *Store) RemoveDocument(notebookID, documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.documents[notebookID]
	for i := range docs {
		if docs[i].ID == documentID {
			s.documents[notebookID] = append(docs[:i], docs[i+1:]...)
			break
		}
	}
	for i := range s.notebooks {
		if s.notebooks[i].ID == notebookID && s.notebooks[i].DocumentCount > 0 {
			s.notebooks[i].DocumentCount--
			break
		}
	}
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// OpenChat opens the chat view for the active notebook.
func (s *Store) OpenChat() error {
	s.mu.Lock()
	if s.activeKnownLocked() == "" {
		s.mu.Unlock()
		return fmt.Errorf("no notebook selected")
	}
	s.chatOpen = true
	s.mu.Unlock()

	if err := s.cache.SetChatOpen(true); err != nil {
		log.Printf("notebook: failed to persist chat state: %v", err)
	}
	return nil
}

// CloseChat returns to the dashboard view.
func (s *Store) CloseChat() {
	s.mu.Lock()
	s.chatOpen = false
	s.mu.Unlock()

	if err := s.cache.SetChatOpen(false); err != nil {
		log.Printf("notebook: failed to persist chat state: %v", err)
	}
}

// Ask sends a question about the active notebook's documents and appends
// both sides of the exchange to the transcript. When the query fails, a
// generic assistant message lands in the transcript and the real error is
// returned for the caller to surface.
func (s *Store) Ask(ctx context.Context, question string) (model.ChatMessage, error) {
	s.mu.Lock()
	notebookID := s.activeKnownLocked()
	s.mu.Unlock()
	if notebookID == "" {
		return model.ChatMessage{}, fmt.Errorf("no notebook selected")
	}

	s.appendMessage(notebookID, model.NewUserMessage(question))

	result, err := s.gateway.QueryNotebook(ctx, notebookID, question)
	if err != nil {
		log.Printf("notebook: query failed: %v", err)
		failure := model.NewAssistantMessage(answerFailureText, nil)
		s.appendMessage(notebookID, failure)
		return failure, err
	}

	answer := model.NewAssistantMessage(result.Answer, result.SourceDocuments)
	s.appendMessage(notebookID, answer)
	return answer, nil
}

// appendMessage adds one message to a notebook's transcript and persists
// it best-effort.
func (s *Store) appendMessage(notebookID string, msg model.ChatMessage) {
	s.mu.Lock()
	s.history[notebookID] = append(s.history[notebookID], msg)
	s.mu.Unlock()

	if err := s.cache.AppendMessage(notebookID, msg); err != nil {
		log.Printf("notebook: failed to persist message: %v", err)
	}
}

// ClearChat empties the active notebook's transcript.
func (s *Store) ClearChat() {
	s.mu.Lock()
	notebookID := s.activeID
	if notebookID != "" {
		s.history[notebookID] = nil
	}
	s.mu.Unlock()
	if notebookID == "" {
		return
	}

	if err := s.cache.ClearHistory(notebookID); err != nil {
		log.Printf("notebook: failed to clear cached transcript: %v", err)
	}
}
