// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared between the gateway
// client, the stores, and the UI: notebooks, documents, chat messages,
// and the authenticated user profile.
package model
