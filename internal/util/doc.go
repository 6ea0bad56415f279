// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across lorebook.
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width aware truncation (CJK safe)
//
// Display Formatting:
//   - FormatBytes: human readable file sizes
//   - FormatRelativeTime: "5m ago" style timestamps
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
