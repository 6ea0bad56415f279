// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notebook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		size     int64
		mimeType string
		wantErr  string
	}{
		{
			name:     "plain text by mime",
			fileName: "notes",
			size:     100,
			mimeType: "text/plain",
		},
		{
			name:     "pdf by mime",
			fileName: "contract",
			size:     1024 * 1024,
			mimeType: "application/pdf",
		},
		{
			name:     "extension rescues generic mime",
			fileName: "report.docx",
			size:     512,
			mimeType: "application/octet-stream",
		},
		{
			name:     "extension rescues missing mime",
			fileName: "README.md",
			size:     512,
			mimeType: "",
		},
		{
			name:     "extension is case insensitive",
			fileName: "DATA.CSV",
			size:     512,
			mimeType: "",
		},
		{
			name:     "mime rescues unknown extension",
			fileName: "export.dat",
			size:     512,
			mimeType: "text/csv",
		},
		{
			name:     "neither mime nor extension",
			fileName: "archive.zip",
			size:     512,
			mimeType: "application/zip",
			wantErr:  "unsupported format",
		},
		{
			name:     "too large",
			fileName: "big.txt",
			size:     MaxUploadSize + 1,
			mimeType: "text/plain",
			wantErr:  "too large",
		},
		{
			name:     "exactly at the cap",
			fileName: "edge.txt",
			size:     MaxUploadSize,
			mimeType: "text/plain",
		},
		{
			name:     "empty file name",
			fileName: "  ",
			size:     512,
			mimeType: "text/plain",
			wantErr:  "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.fileName, tt.size, tt.mimeType)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateUpload_ErrorNamesTheFile(t *testing.T) {
	err := ValidateUpload("слайды.pptx", 512, "application/vnd.ms-powerpoint")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "слайды.pptx"),
		"rejection reason should name the offending file: %v", err)
}

func TestValidateNotebookName(t *testing.T) {
	assert.NoError(t, ValidateNotebookName("Research"))
	assert.Error(t, ValidateNotebookName(""))
	assert.Error(t, ValidateNotebookName("   "))
}
