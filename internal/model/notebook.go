// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// =============================================================================
// NOTEBOOK TYPE
// =============================================================================

// Notebook is a user-owned named collection of documents plus one chat
// transcript. The backend identifies notebooks with a Mongo-style "_id",
// which is the JSON tag used on the wire.
type Notebook struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	DocumentCount int       `json:"documentCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DisplayName returns the notebook name, or a placeholder for unnamed
// notebooks loaded from a partially populated server response.
func (n *Notebook) DisplayName() string {
	if strings.TrimSpace(n.Name) == "" {
		return "Untitled notebook"
	}
	return n.Name
}

// =============================================================================
// DOCUMENT TYPE
// =============================================================================

// DocumentMetadata describes the uploaded file behind a document.
type DocumentMetadata struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// Document is a server-created record for an uploaded file. The client
// never assigns document IDs; they always come from the backend.
type Document struct {
	ID         string           `json:"_id"`
	Title      string           `json:"title"`
	Metadata   DocumentMetadata `json:"metadata"`
	ChunkCount int              `json:"chunkCount"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// DisplayTitle returns the document title, falling back to the uploaded
// file name when the backend left the title empty.
func (d *Document) DisplayTitle() string {
	if strings.TrimSpace(d.Title) != "" {
		return d.Title
	}
	if d.Metadata.FileName != "" {
		return d.Metadata.FileName
	}
	return d.ID
}
