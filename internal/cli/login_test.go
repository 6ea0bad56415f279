// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/lorebook-tui/internal/api"
	"github.com/jeranaias/lorebook-tui/internal/config"
)

// delayedReader yields its content only after an initial pause, standing
// in for a user who takes a while in the browser before pasting.
type delayedReader struct {
	delay time.Duration
	r     io.Reader
	once  sync.Once
}

func (d *delayedReader) Read(p []byte) (int, error) {
	d.once.Do(func() { time.Sleep(d.delay) })
	return d.r.Read(p)
}

// newLoginGateway serves /auth/me, accepting any session cookie.
func newLoginGateway(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			http.NotFound(w, r)
			return
		}
		if _, err := r.Cookie("connect.sid"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "not signed in"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"_id": "u1", "displayName": "Ada"})
	}))
}

func TestRunLogin_SurvivesSlowHandoff(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	srv := newLoginGateway(t)
	defer srv.Close()

	// Shrink the per-probe deadline so a paste slower than one probe
	// window stays fast to simulate. The paste must not be bounded by a
	// deadline that started before the browser hand-off.
	old := loginProbeTimeout
	loginProbeTimeout = 100 * time.Millisecond
	defer func() { loginProbeTimeout = old }()

	input := &delayedReader{
		delay: 300 * time.Millisecond,
		r:     strings.NewReader("tok-123\n"),
	}
	if err := runLogin(Args{URL: srv.URL, NoBrowser: true}, input); err != nil {
		t.Fatalf("runLogin failed after a slow paste: %v", err)
	}

	tokenPath, err := config.TokenPath()
	if err != nil {
		t.Fatalf("TokenPath failed: %v", err)
	}
	token, err := api.LoadToken(tokenPath)
	if err != nil {
		t.Fatalf("LoadToken failed: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("persisted token = %q, want tok-123", token)
	}
}

func TestRunLogin_RejectedToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad token"})
	}))
	defer srv.Close()

	err := runLogin(Args{URL: srv.URL, NoBrowser: true}, strings.NewReader("bogus\n"))
	if err == nil {
		t.Fatal("expected an error for a rejected token")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Errorf("error = %v, want a rejection message", err)
	}

	tokenPath, err := config.TokenPath()
	if err != nil {
		t.Fatalf("TokenPath failed: %v", err)
	}
	token, err := api.LoadToken(tokenPath)
	if err != nil {
		t.Fatalf("LoadToken failed: %v", err)
	}
	if token != "" {
		t.Errorf("a rejected token was persisted: %q", token)
	}
}

func TestRunLogin_EmptyToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	srv := newLoginGateway(t)
	defer srv.Close()

	err := runLogin(Args{URL: srv.URL, NoBrowser: true}, strings.NewReader("   \n"))
	if err == nil || !strings.Contains(err.Error(), "no token") {
		t.Errorf("error = %v, want no-token message", err)
	}
}
