// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies who authored a chat message.
type Role string

const (
	// RoleUser is a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant is an answer produced by the backend.
	RoleAssistant Role = "assistant"
)

// =============================================================================
// CHAT MESSAGE TYPE
// =============================================================================

// Source is a document excerpt the backend cited for an answer.
type Source struct {
	Filename string `json:"filename"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// ChatMessage is one entry in a notebook's transcript. Transcripts are
// append-only; a transcript is only ever cleared in full.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage creates a user message with a generated ID.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message with a generated ID.
func NewAssistantMessage(content string, sources []Source) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Sources:   sources,
		Timestamp: time.Now(),
	}
}

// Preview returns the first maxLen runes of the content on a single line,
// with "..." appended when truncated.
func (m *ChatMessage) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	content = strings.ReplaceAll(content, "\r", "")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// USER PROFILE
// =============================================================================

// UserProfile is the authenticated identity returned by the session probe.
type UserProfile struct {
	ID          string `json:"_id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}
