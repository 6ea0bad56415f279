// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces for the lorebook TUI:
// toasts, the status bar, the login view, and the notebook and document
// list renderers.
package components
