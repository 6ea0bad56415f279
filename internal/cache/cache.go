// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/lorebook-tui/internal/model"
)

// ErrDatabaseError wraps sqlite failures for callers that only need to
// know the cache is unhealthy.
var ErrDatabaseError = errors.New("cache database error")

// Settings keys. The value column is free-form text.
const (
	keyActiveNotebook = "active_notebook_id"
	keyChatOpen       = "chat_open"
)

// schema creates the two tables the cache needs. Messages store their
// sources as a JSON blob; nothing queries inside them.
const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	notebook_id TEXT NOT NULL,
	role        TEXT NOT NULL,
	content     TEXT NOT NULL,
	sources     TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_notebook
	ON messages(notebook_id, created_at);
`

// =============================================================================
// CACHE STORE
// =============================================================================

// Store is a SQLite-backed cache. database/sql serializes access, so a
// Store is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	// PERFORMANCE: WAL keeps readers unblocked during transcript writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create schema: %v", ErrDatabaseError, err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) getSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return value, nil
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// ActiveNotebook returns the persisted notebook selection, or "" when
// none is saved.
func (s *Store) ActiveNotebook() (string, error) {
	return s.getSetting(keyActiveNotebook)
}

// SetActiveNotebook persists the notebook selection.
func (s *Store) SetActiveNotebook(id string) error {
	return s.setSetting(keyActiveNotebook, id)
}

// ChatOpen returns whether the chat view was open when the app last ran.
func (s *Store) ChatOpen() (bool, error) {
	value, err := s.getSetting(keyChatOpen)
	if err != nil {
		return false, err
	}
	return value == "1", nil
}

// SetChatOpen persists the chat view flag.
func (s *Store) SetChatOpen(open bool) error {
	value := "0"
	if open {
		value = "1"
	}
	return s.setSetting(keyChatOpen, value)
}

// =============================================================================
// TRANSCRIPTS
// =============================================================================

// AppendMessage stores one chat message at the end of a notebook's
// transcript.
func (s *Store) AppendMessage(notebookID string, msg model.ChatMessage) error {
	sources := ""
	if len(msg.Sources) > 0 {
		data, err := json.Marshal(msg.Sources)
		if err != nil {
			return fmt.Errorf("failed to encode sources: %w", err)
		}
		sources = string(data)
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO messages (id, notebook_id, role, content, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, notebookID, string(msg.Role), msg.Content, sources, msg.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// History returns a notebook's transcript in chronological order.
func (s *Store) History(notebookID string) ([]model.ChatMessage, error) {
	rows, err := s.db.Query(`
		SELECT id, role, content, sources, created_at
		FROM messages WHERE notebook_id = ?
		ORDER BY created_at, id`,
		notebookID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var (
			msg       model.ChatMessage
			role      string
			sources   string
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &sources, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		msg.Role = model.Role(role)
		msg.Timestamp = time.UnixMilli(createdAt)
		if sources != "" {
			if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
				// A corrupt sources blob costs the citations, not the
				// message.
				msg.Sources = nil
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return messages, nil
}

// ClearHistory deletes a notebook's transcript.
func (s *Store) ClearHistory(notebookID string) error {
	_, err := s.db.Exec("DELETE FROM messages WHERE notebook_id = ?", notebookID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// DeleteNotebook removes everything cached for a notebook: its
// transcript, and the selection if it pointed there.
func (s *Store) DeleteNotebook(notebookID string) error {
	if err := s.ClearHistory(notebookID); err != nil {
		return err
	}
	active, err := s.ActiveNotebook()
	if err != nil {
		return err
	}
	if active == notebookID {
		return s.SetActiveNotebook("")
	}
	return nil
}

// Reset wipes the entire cache. Used on logout.
func (s *Store) Reset() error {
	for _, stmt := range []string{
		"DELETE FROM messages",
		"DELETE FROM settings",
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}
	return nil
}
