// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the notebook browser: the home list of
// notebooks and the document view of the selected notebook, including
// creation, deletion, and uploads.
package dashboard
