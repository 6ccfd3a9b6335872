// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/notify"
	"github.com/taibuivan/vizion/pkg/result"
)

// # State Machine

// Status is the session state.
type Status int

const (
	// StatusLoading is the initial state, until the first check settles.
	StatusLoading Status = iota
	// StatusAuthenticated means a user is signed in.
	StatusAuthenticated
	// StatusUnauthenticated means nobody is signed in.
	StatusUnauthenticated
)

// String implements [fmt.Stringer].
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// SessionSnapshot is an immutable view of the session handed to readers and
// subscribers.
type SessionSnapshot struct {
	Status Status
	// User is nil unless Status is StatusAuthenticated.
	User *User
}

// IsAuthenticated reports whether a user is signed in.
func (s SessionSnapshot) IsAuthenticated() bool { return s.Status == StatusAuthenticated }

// IsLoading reports whether the initial check is still pending.
func (s SessionSnapshot) IsLoading() bool { return s.Status == StatusLoading }

// Authenticator is the contract the store needs from the auth endpoints.
// [*Service] implements it.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (*User, error)
	CurrentUser(ctx context.Context) (*User, error)
	Logout(ctx context.Context) error
}

// SessionStore owns the client's belief about the current user.
//
// # Ownership
//
// State changes only through the store's operations. Readers get copies;
// subscribers get a [SessionSnapshot] after every transition.
//
// # Concurrency
//
// Safe for concurrent use. The lock is never held across a network call, and
// subscribers receive snapshots in transition order. A session check that
// started before a login, registration or logout completed is discarded when
// it returns: the explicit user action wins.
type SessionStore struct {
	authenticator Authenticator
	logger        *slog.Logger

	mu     sync.Mutex
	status Status
	user   *User
	// epoch counts explicit transitions (login, register, logout).
	epoch uint64

	changes notify.Broadcaster[SessionSnapshot]
}

// NewSessionStore constructs a store in [StatusLoading]. The owner is expected
// to call [SessionStore.Initialize] once right after construction.
func NewSessionStore(authenticator Authenticator, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		authenticator: authenticator,
		logger:        logger.With(slog.String("store", "session")),
		status:        StatusLoading,
	}
}

// # Session Checks

/*
Initialize asks the server who is signed in.

Description: Success moves the store to Authenticated. Any failure moves it
to Unauthenticated; the failure is reported in the returned value, never as
an error the caller must handle.

Returns:
  - Ok(user): signed in
  - Expected(err): the server said 401/403, i.e. not signed in
  - Failed(err): the check itself broke (network, 5xx); still Unauthenticated
*/
func (store *SessionStore) Initialize(ctx context.Context) result.Result[*User] {
	return store.Refresh(ctx)
}

// Refresh repeats the session check on demand. Same contract as [SessionStore.Initialize].
func (store *SessionStore) Refresh(ctx context.Context) result.Result[*User] {
	store.mu.Lock()
	startEpoch := store.epoch
	store.mu.Unlock()

	user, err := store.authenticator.CurrentUser(ctx)

	store.mu.Lock()
	if store.epoch != startEpoch {
		store.mu.Unlock()
		store.logger.DebugContext(ctx, "session_check_discarded")
		return outcome(user, err)
	}
	if err != nil {
		store.status, store.user = StatusUnauthenticated, nil
	} else {
		store.status, store.user = StatusAuthenticated, copyUser(user)
	}
	status := store.status
	store.changes.Post(store.snapshotLocked())
	store.mu.Unlock()

	checked := outcome(user, err)
	if checked.IsFailed() {
		store.logger.WarnContext(ctx, "session_check_failed", slog.Any("error", err))
	} else {
		store.logger.DebugContext(ctx, "session_checked", slog.String("status", status.String()))
	}

	store.changes.Flush()
	return checked
}

// # Explicit Transitions

// Login signs in. On failure the state is left untouched and the error is
// returned: the typed API error when there is one, otherwise a generic error.
func (store *SessionStore) Login(ctx context.Context, input LoginInput) error {
	user, err := store.authenticator.Login(ctx, input)
	if err != nil {
		return apperr.Surface(err, "Failed to login")
	}

	store.authenticate(ctx, user)
	return nil
}

// Register creates an account and signs it in. Same contract as [SessionStore.Login].
// Use [SignUpForm.Input] to build input from what the user typed.
func (store *SessionStore) Register(ctx context.Context, input RegisterInput) error {
	user, err := store.authenticator.Register(ctx, input)
	if err != nil {
		return apperr.Surface(err, "Failed to register")
	}

	store.authenticate(ctx, user)
	return nil
}

// Logout signs out. The local session is cleared whatever the server says;
// a server failure is still returned after clearing.
func (store *SessionStore) Logout(ctx context.Context) error {
	err := store.authenticator.Logout(ctx)

	store.mu.Lock()
	store.epoch++
	store.status, store.user = StatusUnauthenticated, nil
	store.changes.Post(store.snapshotLocked())
	store.mu.Unlock()

	store.changes.Flush()

	if err != nil {
		store.logger.WarnContext(ctx, "logout_server_failed", slog.Any("error", err))
		return apperr.Surface(err, "Failed to logout")
	}

	store.logger.DebugContext(ctx, "logged_out")
	return nil
}

func (store *SessionStore) authenticate(ctx context.Context, user *User) {
	store.mu.Lock()
	store.epoch++
	store.status, store.user = StatusAuthenticated, copyUser(user)
	store.changes.Post(store.snapshotLocked())
	store.mu.Unlock()

	store.logger.DebugContext(ctx, "session_authenticated", slog.String("user_id", user.ID))
	store.changes.Flush()
}

// # Readers

// Snapshot returns the current state.
func (store *SessionStore) Snapshot() SessionSnapshot {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.snapshotLocked()
}

// Status returns the current state.
func (store *SessionStore) Status() Status { return store.Snapshot().Status }

// User returns a copy of the signed-in user, or nil.
func (store *SessionStore) User() *User { return store.Snapshot().User }

// IsAuthenticated reports whether a user is signed in.
func (store *SessionStore) IsAuthenticated() bool { return store.Snapshot().IsAuthenticated() }

// IsLoading reports whether the initial check is still pending.
func (store *SessionStore) IsLoading() bool { return store.Snapshot().IsLoading() }

// # Subscriptions

// Subscribe registers fn to receive a snapshot after every transition.
// Close the returned subscription to unregister.
func (store *SessionStore) Subscribe(fn func(SessionSnapshot)) *notify.Subscription {
	return store.changes.Subscribe(fn)
}

// Close unregisters every subscriber. The store must not be used afterwards.
func (store *SessionStore) Close() {
	store.changes.Clear()
}

// # Helpers

func (store *SessionStore) snapshotLocked() SessionSnapshot {
	return SessionSnapshot{Status: store.status, User: copyUser(store.user)}
}

func copyUser(user *User) *User {
	if user == nil {
		return nil
	}
	copied := *user
	return &copied
}

// outcome classifies a session check.
func outcome(user *User, err error) result.Result[*User] {
	switch {
	case err == nil:
		return result.Ok(copyUser(user))
	case apperr.IsUnauthenticated(err):
		return result.Expected[*User](err)
	default:
		return result.Failed[*User](err)
	}
}
