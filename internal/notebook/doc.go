// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notebook holds the client-side state for notebooks, documents,
// and chat transcripts. The backend is authoritative for notebooks and
// documents; transcripts and UI selection are client-owned and persisted
// in the local cache.
package notebook
