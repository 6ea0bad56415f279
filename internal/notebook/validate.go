// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notebook

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxUploadSize is the largest file accepted for upload.
const MaxUploadSize = 10 * 1024 * 1024

// allowedMimeTypes are the document formats the backend can ingest.
var allowedMimeTypes = map[string]bool{
	"text/plain":         true,
	"text/markdown":      true,
	"text/csv":           true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// allowedExtensions accepts files whose MIME type is missing or generic
// but whose name clearly identifies a supported format.
var allowedExtensions = regexp.MustCompile(`(?i)\.(txt|md|csv|pdf|doc|docx)$`)

// ValidateUpload checks a candidate file before any bytes leave the
// machine. MIME type and file extension are alternatives: either one
// identifying a supported format is enough.
func ValidateUpload(fileName string, size int64, mimeType string) error {
	if strings.TrimSpace(fileName) == "" {
		return fmt.Errorf("file name is empty")
	}
	if size > MaxUploadSize {
		return fmt.Errorf("%s: file too large (max 10MB)", fileName)
	}
	if !allowedMimeTypes[mimeType] && !allowedExtensions.MatchString(fileName) {
		return fmt.Errorf("%s: unsupported format (use txt, md, csv, pdf, doc, or docx)", fileName)
	}
	return nil
}

// ValidateNotebookName checks a new notebook's name.
func ValidateNotebookName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("notebook name is required")
	}
	return nil
}
