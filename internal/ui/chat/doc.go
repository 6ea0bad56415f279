// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the question-and-answer view for the active
// notebook: a viewport transcript, a text input, and markdown-rendered
// answers with their source citations.
package chat
