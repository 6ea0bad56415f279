// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the typed HTTP client for the Lorebook backend.
//
// It is the only package in the application permitted to perform network
// I/O. Every backend capability (session probe, logout, notebook CRUD,
// document upload and listing, notebook query, health) is exposed as one
// method taking a context and typed parameters, returning typed results
// or a categorized error.
package api
