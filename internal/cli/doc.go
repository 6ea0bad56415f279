// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements argument parsing and the one-shot subcommands of
// the lorebook binary: login, logout, status, notebooks, ask, config and
// version. The default command (no arguments) starts the TUI, which lives
// in the root package.
package cli
