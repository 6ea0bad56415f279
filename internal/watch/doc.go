// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch uploads files dropped into a watched folder to the
// active notebook. Files are debounced so half-written downloads are
// not uploaded mid-copy.
package watch
