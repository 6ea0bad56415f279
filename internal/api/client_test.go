// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// ERROR MAPPING TESTS
// =============================================================================

func TestStatusError_Mapping(t *testing.T) {
	testCases := []struct {
		status   int
		sentinel error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusRequestEntityTooLarge, ErrValidation},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}

	for _, tc := range testCases {
		err := statusError(tc.status, "boom")
		if !errors.Is(err, tc.sentinel) {
			t.Errorf("statusError(%d) not mapped to %v: %v", tc.status, tc.sentinel, err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Errorf("statusError(%d) does not wrap *APIError", tc.status)
		} else if apiErr.Status != tc.status {
			t.Errorf("APIError.Status = %d, want %d", apiErr.Status, tc.status)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(statusError(http.StatusNotFound, "")) {
		t.Error("404 should not be retryable")
	}
	if IsRetryable(statusError(http.StatusUnauthorized, "")) {
		t.Error("401 should not be retryable")
	}
	if !IsRetryable(statusError(http.StatusInternalServerError, "")) {
		t.Error("500 should be retryable")
	}
	if !IsRetryable(statusError(http.StatusTooManyRequests, "")) {
		t.Error("429 should be retryable")
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestProbeSession_Authenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		cookie, err := r.Cookie("connect.sid")
		if err != nil || cookie.Value != "tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"_id":         "user-1",
			"displayName": "Ada",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL).WithToken("tok-123")
	profile, err := client.ProbeSession(context.Background())
	if err != nil {
		t.Fatalf("ProbeSession failed: %v", err)
	}
	if profile.ID != "user-1" || profile.DisplayName != "Ada" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestProbeSession_Anonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ProbeSession(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLoginURL(t *testing.T) {
	client := NewClient("http://example.com/")
	if got := client.LoginURL(); got != "http://example.com/auth/google" {
		t.Errorf("LoginURL = %q", got)
	}
}

func TestEndSession(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL).WithToken("tok")
	if err := client.EndSession(context.Background()); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if method != http.MethodPost || path != "/auth/logout" {
		t.Errorf("got %s %s, want POST /auth/logout", method, path)
	}
}

// =============================================================================
// NOTEBOOK TESTS
// =============================================================================

func TestListNotebooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"_id":"nb-1","name":"Research","documentCount":3},
			{"_id":"nb-2","name":"Recipes","documentCount":0}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	notebooks, err := client.ListNotebooks(context.Background())
	if err != nil {
		t.Fatalf("ListNotebooks failed: %v", err)
	}
	if len(notebooks) != 2 {
		t.Fatalf("got %d notebooks, want 2", len(notebooks))
	}
	if notebooks[0].ID != "nb-1" || notebooks[0].DocumentCount != 3 {
		t.Errorf("unexpected notebook: %+v", notebooks[0])
	}
}

func TestCreateNotebook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "Field Notes" {
			t.Errorf("name = %q", body["name"])
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"_id": "nb-9", "name": body["name"], "description": body["description"],
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	nb, err := client.CreateNotebook(context.Background(), "Field Notes", "notes from the field")
	if err != nil {
		t.Fatalf("CreateNotebook failed: %v", err)
	}
	if nb.ID != "nb-9" || nb.Name != "Field Notes" {
		t.Errorf("unexpected notebook: %+v", nb)
	}
}

func TestDeleteNotebook_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"notebook not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.DeleteNotebook(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestUploadDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Fatalf("missing form field %q: %v", "document", err)
		}
		defer file.Close()
		if header.Filename != "notes.md" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"_id": "doc-1", "title": "notes.md",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	doc, err := client.UploadDocument(context.Background(), "nb-1", []byte("# notes"), "notes.md", "text/markdown")
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}
	if doc.ID != "doc-1" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestUploadDocument_NoRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.UploadDocument(context.Background(), "nb-1", []byte("x"), "a.txt", "text/plain")
	if !errors.Is(err, ErrServer) {
		t.Fatalf("expected ErrServer, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("upload attempted %d times, want exactly 1", got)
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	docs, err := client.ListDocuments(context.Background(), "nb-1")
	if err != nil {
		t.Fatalf("ListDocuments failed after retries: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents, want 0", len(docs))
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("got %d attempts, want 3", got)
	}
}

// =============================================================================
// QUERY TESTS
// =============================================================================

func TestQueryNotebook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents/nb-1/query" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != "what is a rig?" {
			t.Errorf("query = %q", body["query"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"answer": "A rig is a drilling platform.",
			"sourceDocuments": []map[string]string{
				{"filename": "rigs.pdf", "excerpt": "A rig is..."},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.QueryNotebook(context.Background(), "nb-1", "what is a rig?")
	if err != nil {
		t.Fatalf("QueryNotebook failed: %v", err)
	}
	if result.Answer == "" {
		t.Error("empty answer")
	}
	if len(result.SourceDocuments) != 1 || result.SourceDocuments[0].Filename != "rigs.pdf" {
		t.Errorf("unexpected sources: %+v", result.SourceDocuments)
	}
}

func TestQueryNotebook_OutlivesClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"answer":"slow but sure"}`))
	}))
	defer server.Close()

	// The general request timeout is far shorter than the answer takes;
	// queries must not be bounded by it.
	client := NewClient(server.URL).WithTimeout(50 * time.Millisecond)
	result, err := client.QueryNotebook(context.Background(), "nb-1", "q")
	if err != nil {
		t.Fatalf("QueryNotebook failed: %v", err)
	}
	if result.Answer != "slow but sure" {
		t.Errorf("answer = %q", result.Answer)
	}

	// The short timeout still governs everything else.
	if _, err := client.ListNotebooks(context.Background()); err == nil {
		t.Error("expected the client timeout to cut off a slow list request")
	}
}

func TestQueryNotebook_ContextCancelled(t *testing.T) {
	client := NewClient("http://localhost:0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.QueryNotebook(ctx, "nb-1", "q")
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}

// =============================================================================
// TOKEN PERSISTENCE TESTS
// =============================================================================

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "session")

	if err := SaveToken(path, "tok-abc"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file permissions = %o, want 0600", info.Mode().Perm())
	}

	token, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken failed: %v", err)
	}
	if token != "tok-abc" {
		t.Errorf("token = %q, want %q", token, "tok-abc")
	}
}

func TestLoadToken_Missing(t *testing.T) {
	token, err := LoadToken(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("LoadToken failed: %v", err)
	}
	if token != "" {
		t.Errorf("token = %q, want empty", token)
	}
}

func TestSaveToken_EmptyDeletes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	if err := SaveToken(path, "tok"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	if err := SaveToken(path, ""); err != nil {
		t.Fatalf("SaveToken(empty) failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("token file should have been removed")
	}
}

func TestDeleteToken_Missing(t *testing.T) {
	if err := DeleteToken(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Errorf("DeleteToken on missing file: %v", err)
	}
}

// Guard against the limiter stalling quick successive queries forever.
func TestQueryLimiter_AllowsBurst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if _, err := client.QueryNotebook(ctx, "nb", "q"); err != nil {
			t.Fatalf("burst query %d failed: %v", i, err)
		}
	}
}
