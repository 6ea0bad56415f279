// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jeranaias/lorebook-tui/internal/api"
	"github.com/jeranaias/lorebook-tui/internal/model"
)

// =============================================================================
// AUTH STATE
// =============================================================================

// State is the authentication state of the application.
type State int

const (
	// StateUnknown means the initial probe has not completed yet.
	// The UI shows a loading view and nothing else acts on session state.
	StateUnknown State = iota
	// StateAuthenticated means the backend confirmed the credential.
	StateAuthenticated
	// StateAnonymous means no valid session exists.
	StateAnonymous
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Gateway is the slice of the backend client the session store needs.
type Gateway interface {
	ProbeSession(ctx context.Context) (*model.UserProfile, error)
	EndSession(ctx context.Context) error
	LoginURL() string
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Store holds the current authentication state and the profile of the
// signed-in user. All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	gateway Gateway

	state   State
	profile *model.UserProfile

	initOnce sync.Once

	// Callbacks fire outside the lock, after a transition commits.
	onAuthenticated func(profile model.UserProfile)
	onAnonymous     func(cause error)
}

// NewStore creates a session store in the Unknown state.
func NewStore(gateway Gateway) *Store {
	return &Store{
		gateway: gateway,
		state:   StateUnknown,
	}
}

// OnAuthenticated registers a callback for transitions into the
// authenticated state. Must be called before Initialize.
func (s *Store) OnAuthenticated(fn func(profile model.UserProfile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAuthenticated = fn
}

// OnAnonymous registers a callback for transitions into the anonymous
// state. Must be called before Initialize.
//
// cause is nil for an explicit logout and the probe error otherwise, so
// the caller can tell a rejected credential (api.ErrUnauthorized) from a
// gateway that was merely unreachable.
func (s *Store) OnAnonymous(fn func(cause error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAnonymous = fn
}

// State returns the current authentication state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoginURL returns the backend URL that begins the OAuth sign-in flow.
func (s *Store) LoginURL() string {
	return s.gateway.LoginURL()
}

// Profile returns the signed-in user's profile, or nil when anonymous
// or unknown.
func (s *Store) Profile() *model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Initialize probes the backend for an existing session exactly once.
// Subsequent calls are no-ops; refreshing after a login goes through
// Refresh instead. The resolved state is returned.
func (s *Store) Initialize(ctx context.Context) State {
	s.initOnce.Do(func() {
		s.resolve(ctx)
	})
	return s.State()
}

// Refresh re-probes the backend, for use after a login hand-off when a
// fresh credential has been installed in the gateway client.
func (s *Store) Refresh(ctx context.Context) State {
	s.resolve(ctx)
	return s.State()
}

// resolve runs the probe and commits the resulting state.
//
// A credential rejection means anonymous; a network failure also resolves
// to anonymous rather than leaving the UI stuck on the loading view. The
// distinction is only logged.
func (s *Store) resolve(ctx context.Context) {
	profile, err := s.gateway.ProbeSession(ctx)
	if err != nil {
		if !errors.Is(err, api.ErrUnauthorized) {
			log.Printf("session: probe failed: %v", err)
		}
		s.transitionAnonymous(err)
		return
	}
	s.transitionAuthenticated(*profile)
}

// Logout ends the session. The local transition to anonymous is
// unconditional: even if the backend call fails, the user asked to be
// signed out and the client honors that. The network error, if any, is
// returned for display.
func (s *Store) Logout(ctx context.Context) error {
	err := s.gateway.EndSession(ctx)
	if err != nil {
		log.Printf("session: logout request failed: %v", err)
	}
	s.transitionAnonymous(nil)
	return err
}

func (s *Store) transitionAuthenticated(profile model.UserProfile) {
	s.mu.Lock()
	s.state = StateAuthenticated
	s.profile = &profile
	fn := s.onAuthenticated
	s.mu.Unlock()

	log.Printf("session: authenticated as %s", profile.DisplayName)
	if fn != nil {
		fn(profile)
	}
}

func (s *Store) transitionAnonymous(cause error) {
	s.mu.Lock()
	wasAnonymous := s.state == StateAnonymous
	s.state = StateAnonymous
	s.profile = nil
	fn := s.onAnonymous
	s.mu.Unlock()

	// The anonymous callback clears per-user state (notebook store,
	// local cache). Skip it when nothing changed.
	if fn != nil && !wasAnonymous {
		fn(cause)
	}
}
