// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks whether the application holds a valid backend
// session. It owns the authentication state machine and nothing else:
// the credential itself lives in the api client, notebook data in the
// notebook store.
package session
