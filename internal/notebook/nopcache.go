// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notebook

import (
	"github.com/jeranaias/lorebook-tui/internal/model"
)

// NopCache is a Cache that remembers nothing. Used when the durable
// cache cannot be opened so the app still runs, just without restoring
// state between sessions.
type NopCache struct{}

var _ Cache = NopCache{}

func (NopCache) ActiveNotebook() (string, error)                       { return "", nil }
func (NopCache) SetActiveNotebook(string) error                        { return nil }
func (NopCache) ChatOpen() (bool, error)                               { return false, nil }
func (NopCache) SetChatOpen(bool) error                                { return nil }
func (NopCache) History(string) ([]model.ChatMessage, error)           { return nil, nil }
func (NopCache) AppendMessage(string, model.ChatMessage) error         { return nil }
func (NopCache) ClearHistory(string) error                             { return nil }
func (NopCache) DeleteNotebook(string) error                           { return nil }
func (NopCache) Reset() error                                          { return nil }
