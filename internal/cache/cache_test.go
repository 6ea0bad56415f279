// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/lorebook-tui/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSettings_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	// Defaults before anything is saved.
	if id, err := store.ActiveNotebook(); err != nil || id != "" {
		t.Errorf("ActiveNotebook = %q, %v; want empty, nil", id, err)
	}
	if open, err := store.ChatOpen(); err != nil || open {
		t.Errorf("ChatOpen = %v, %v; want false, nil", open, err)
	}

	if err := store.SetActiveNotebook("nb-1"); err != nil {
		t.Fatalf("SetActiveNotebook failed: %v", err)
	}
	if err := store.SetChatOpen(true); err != nil {
		t.Fatalf("SetChatOpen failed: %v", err)
	}

	if id, _ := store.ActiveNotebook(); id != "nb-1" {
		t.Errorf("ActiveNotebook = %q, want nb-1", id)
	}
	if open, _ := store.ChatOpen(); !open {
		t.Error("ChatOpen = false, want true")
	}

	// Overwrite, don't accumulate.
	store.SetActiveNotebook("nb-2")
	if id, _ := store.ActiveNotebook(); id != "nb-2" {
		t.Errorf("ActiveNotebook = %q, want nb-2", id)
	}
}

func TestHistory_OrderAndSources(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Truncate(time.Millisecond)
	first := model.ChatMessage{
		ID: "m1", Role: model.RoleUser, Content: "question", Timestamp: base,
	}
	second := model.ChatMessage{
		ID: "m2", Role: model.RoleAssistant, Content: "answer",
		Sources:   []model.Source{{Filename: "notes.md", Excerpt: "..."}},
		Timestamp: base.Add(time.Second),
	}
	for _, msg := range []model.ChatMessage{second, first} {
		if err := store.AppendMessage("nb-1", msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	history, err := store.History("nb-1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d messages, want 2", len(history))
	}
	// Chronological order regardless of insert order.
	if history[0].ID != "m1" || history[1].ID != "m2" {
		t.Errorf("order = %s, %s; want m1, m2", history[0].ID, history[1].ID)
	}
	if history[0].Role != model.RoleUser {
		t.Errorf("role = %v, want user", history[0].Role)
	}
	if len(history[1].Sources) != 1 || history[1].Sources[0].Filename != "notes.md" {
		t.Errorf("sources not restored: %+v", history[1].Sources)
	}
	if !history[0].Timestamp.Equal(base) {
		t.Errorf("timestamp = %v, want %v", history[0].Timestamp, base)
	}
}

func TestHistory_EmptyNotebook(t *testing.T) {
	store := openTestStore(t)
	history, err := store.History("nb-none")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("got %d messages, want 0", len(history))
	}
}

func TestClearHistory_ScopedToNotebook(t *testing.T) {
	store := openTestStore(t)
	store.AppendMessage("nb-1", model.NewUserMessage("a"))
	store.AppendMessage("nb-2", model.NewUserMessage("b"))

	if err := store.ClearHistory("nb-1"); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}

	if history, _ := store.History("nb-1"); len(history) != 0 {
		t.Error("nb-1 transcript not cleared")
	}
	if history, _ := store.History("nb-2"); len(history) != 1 {
		t.Error("nb-2 transcript should be untouched")
	}
}

func TestDeleteNotebook_ClearsSelection(t *testing.T) {
	store := openTestStore(t)
	store.SetActiveNotebook("nb-1")
	store.AppendMessage("nb-1", model.NewUserMessage("a"))

	if err := store.DeleteNotebook("nb-1"); err != nil {
		t.Fatalf("DeleteNotebook failed: %v", err)
	}

	if id, _ := store.ActiveNotebook(); id != "" {
		t.Errorf("selection = %q, want empty", id)
	}
	if history, _ := store.History("nb-1"); len(history) != 0 {
		t.Error("transcript not removed")
	}
}

func TestDeleteNotebook_KeepsOtherSelection(t *testing.T) {
	store := openTestStore(t)
	store.SetActiveNotebook("nb-2")

	if err := store.DeleteNotebook("nb-1"); err != nil {
		t.Fatalf("DeleteNotebook failed: %v", err)
	}
	if id, _ := store.ActiveNotebook(); id != "nb-2" {
		t.Errorf("selection = %q, want nb-2", id)
	}
}

func TestReset_WipesEverything(t *testing.T) {
	store := openTestStore(t)
	store.SetActiveNotebook("nb-1")
	store.SetChatOpen(true)
	store.AppendMessage("nb-1", model.NewUserMessage("a"))

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if id, _ := store.ActiveNotebook(); id != "" {
		t.Error("selection survived reset")
	}
	if open, _ := store.ChatOpen(); open {
		t.Error("chat flag survived reset")
	}
	if history, _ := store.History("nb-1"); len(history) != 0 {
		t.Error("transcript survived reset")
	}
}

func TestOpen_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.SetActiveNotebook("nb-1")
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if id, _ := reopened.ActiveNotebook(); id != "nb-1" {
		t.Errorf("selection = %q after reopen, want nb-1", id)
	}
}
