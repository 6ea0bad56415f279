// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/lorebook-tui/internal/util"
)

// SECURITY: The session token is the user's credential. It lives in a
// 0600 file inside a 0700 directory and is never written anywhere else.

// LoadToken reads a saved session token. A missing file is not an error;
// it simply means no session has been established on this machine.
func LoadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken persists a session token with restrictive permissions.
// An empty token removes the file instead.
func SaveToken(path, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return DeleteToken(path)
	}
	if err := util.AtomicWriteFileWithDir(path, []byte(token+"\n"), 0600, 0700); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// DeleteToken removes the saved token. Deleting a token that does not
// exist is a no-op.
func DeleteToken(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
