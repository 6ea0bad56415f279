// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error variables for the backend error taxonomy. Callers classify
// failures with errors.Is; the wrapped *APIError (when present) carries
// the HTTP status and server message.
var (
	// ErrUnauthorized indicates the session credential is missing or expired.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrNotFound indicates the requested notebook or document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the backend (or the client, pre-flight)
	// rejected the request input.
	ErrValidation = errors.New("validation failed")

	// ErrServer indicates the backend returned a 5xx response.
	ErrServer = errors.New("server error")
)

// APIError represents an error response from the Lorebook backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// statusError maps an HTTP status code and body to the error taxonomy.
// The *APIError detail is always wrapped so both the category and the
// status survive errors.Is / errors.As.
func statusError(status int, message string) error {
	detail := &APIError{Status: status, Message: message}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, detail)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, detail)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity ||
		status == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %w", ErrValidation, detail)
	case status >= 500:
		return fmt.Errorf("%w: %w", ErrServer, detail)
	default:
		return detail
	}
}

// IsRetryable reports whether an error is worth retrying: 5xx responses
// and rate limiting, never context cancellation or client-side failures.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrServer) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests
	}
	return false
}
