// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

// browser_windows.go - Browser launching on Windows.
package cli

import (
	"os/exec"
)

// OpenBrowser opens url in the user's default browser.
func OpenBrowser(url string) error {
	// "start" is a cmd.exe builtin; the empty string is the window title.
	return exec.Command("cmd", "/c", "start", "", url).Start()
}
