// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache persists client-owned state between runs in a local
// SQLite database: the selected notebook, the chat view flag, and chat
// transcripts. The backend never sees any of it.
package cache
