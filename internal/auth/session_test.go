// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vizion/internal/apitest"
	"github.com/taibuivan/vizion/internal/auth"
	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/transport"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newStore(t *testing.T, baseURL string) *auth.SessionStore {
	t.Helper()

	client, err := transport.New(transport.Options{BaseURL: baseURL, Logger: quietLogger})
	require.NoError(t, err)

	store := auth.NewSessionStore(auth.NewService(client), quietLogger)
	t.Cleanup(store.Close)
	return store
}

// stubAuthenticator lets a test script every endpoint.
type stubAuthenticator struct {
	currentUser func(ctx context.Context) (*auth.User, error)
	login       func(ctx context.Context, input auth.LoginInput) (*auth.User, error)
	logout      func(ctx context.Context) error
}

func (s *stubAuthenticator) Register(ctx context.Context, input auth.RegisterInput) (*auth.User, error) {
	return s.Login(ctx, auth.LoginInput{Email: input.Email, Password: input.Password})
}

func (s *stubAuthenticator) Login(ctx context.Context, input auth.LoginInput) (*auth.User, error) {
	return s.login(ctx, input)
}

func (s *stubAuthenticator) CurrentUser(ctx context.Context) (*auth.User, error) {
	return s.currentUser(ctx)
}

func (s *stubAuthenticator) Logout(ctx context.Context) error {
	return s.logout(ctx)
}

/*
TestSessionStore_LoginScenario verifies that a login answered with user u1
leaves the store Authenticated(u1).
*/
func TestSessionStore_LoginScenario(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"ok","data":{"id":"u1","name":"A","email":"a@b.com","created_at":"..."}}`)
	}))
	t.Cleanup(server.Close)

	store := newStore(t, server.URL+"/api")
	require.True(t, store.IsLoading())

	err := store.Login(context.Background(), auth.LoginInput{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, auth.StatusAuthenticated, store.Status())
	assert.True(t, store.IsAuthenticated())
	require.NotNil(t, store.User())
	assert.Equal(t, "u1", store.User().ID)
	assert.Equal(t, "...", store.User().CreatedAt)
}

/*
TestSessionStore_InitializeFailureIsolation verifies that a failing session
check never escapes as an error and always ends Unauthenticated, while the
result still tells routine "not signed in" from a broken check.
*/
func TestSessionStore_InitializeFailureIsolation(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected bool
	}{
		{"unauthorized", http.StatusUnauthorized, true},
		{"forbidden", http.StatusForbidden, true},
		{"server error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"code":"X","message":"nope"}`)
			}))
			t.Cleanup(server.Close)

			store := newStore(t, server.URL)
			checked := store.Initialize(context.Background())

			assert.False(t, checked.IsOk())
			assert.Equal(t, tt.expected, checked.IsExpected())
			assert.Equal(t, !tt.expected, checked.IsFailed())
			assert.False(t, store.IsAuthenticated())
			assert.False(t, store.IsLoading())
			assert.Nil(t, store.User())
		})
	}
}

/*
TestSessionStore_InitializeNetworkFailure verifies that an unreachable API is
a failed check, not a panic or an error return.
*/
func TestSessionStore_InitializeNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	store := newStore(t, baseURL)
	checked := store.Initialize(context.Background())

	require.True(t, checked.IsFailed())
	assert.True(t, apperr.IsNetwork(checked.Err()))
	assert.Equal(t, auth.StatusUnauthenticated, store.Status())
}

/*
TestSessionStore_FullCycle verifies register, check, logout and login
against the fake API.
*/
func TestSessionStore_FullCycle(t *testing.T) {
	api := apitest.New(t)
	store := newStore(t, api.APIURL())
	ctx := context.Background()

	assert.True(t, store.Initialize(ctx).IsExpected())

	form := auth.SignUpForm{Name: "Ann", Email: "ann@vizion.test", Password: "password1", ConfirmPassword: "password1"}
	require.NoError(t, form.Validate())
	require.NoError(t, store.Register(ctx, form.Input()))
	assert.Equal(t, "ann@vizion.test", store.User().Email)

	checked := store.Refresh(ctx)
	user, ok := checked.Value()
	require.True(t, ok)
	assert.Equal(t, store.User().ID, user.ID)

	require.NoError(t, store.Logout(ctx))
	assert.False(t, store.IsAuthenticated())
	assert.True(t, store.Refresh(ctx).IsExpected())

	require.NoError(t, store.Login(ctx, auth.LoginInput{Email: "ann@vizion.test", Password: "password1"}))
	assert.True(t, store.IsAuthenticated())
}

/*
TestSessionStore_LoginFailure verifies that a rejected login keeps the state
and surfaces the typed error.
*/
func TestSessionStore_LoginFailure(t *testing.T) {
	api := apitest.New(t)
	store := newStore(t, api.APIURL())
	ctx := context.Background()

	store.Initialize(ctx)

	err := store.Login(ctx, auth.LoginInput{Email: "ann@vizion.test", Password: "wrong"})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, "Invalid email or password", ae.Message)
	assert.Equal(t, auth.StatusUnauthenticated, store.Status())
}

/*
TestSessionStore_LoginGenericFailure verifies the generic wrapping of
untyped errors.
*/
func TestSessionStore_LoginGenericFailure(t *testing.T) {
	cause := errors.New("keychain locked")
	store := auth.NewSessionStore(&stubAuthenticator{
		login: func(context.Context, auth.LoginInput) (*auth.User, error) { return nil, cause },
	}, quietLogger)

	err := store.Login(context.Background(), auth.LoginInput{})
	require.Error(t, err)
	assert.False(t, apperr.IsAPIError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to login: keychain locked", err.Error())
	assert.True(t, store.IsLoading())
}

/*
TestSessionStore_LogoutServerError verifies that a 500 on logout still clears
the local session and is returned to the caller.
*/
func TestSessionStore_LogoutServerError(t *testing.T) {
	api := apitest.New(t)
	_, err := api.AddUser("Ann", "ann@vizion.test", "password1")
	require.NoError(t, err)

	store := newStore(t, api.APIURL())
	ctx := context.Background()
	require.NoError(t, store.Login(ctx, auth.LoginInput{Email: "ann@vizion.test", Password: "password1"}))

	api.Fail(http.MethodPost, "/auth/logout", http.StatusInternalServerError, apperr.CodeInternal, "Logout failed")

	err = store.Logout(ctx)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusInternalServerError, ae.Status)
	assert.Nil(t, store.User())
	assert.Equal(t, auth.StatusUnauthenticated, store.Status())
}

/*
TestSessionStore_StaleCheckDiscarded verifies that a session check which
started before a login finished does not overwrite the login.
*/
func TestSessionStore_StaleCheckDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	store := auth.NewSessionStore(&stubAuthenticator{
		currentUser: func(context.Context) (*auth.User, error) {
			close(started)
			<-release
			return nil, &apperr.APIError{Code: apperr.CodeUnauthorized, Status: http.StatusUnauthorized}
		},
		login: func(context.Context, auth.LoginInput) (*auth.User, error) {
			return &auth.User{ID: "u1"}, nil
		},
	}, quietLogger)

	done := make(chan bool)
	go func() {
		done <- store.Initialize(context.Background()).IsExpected()
	}()

	<-started
	require.NoError(t, store.Login(context.Background(), auth.LoginInput{}))
	close(release)

	assert.True(t, <-done)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "u1", store.User().ID)
}

/*
TestSessionStore_Subscribe verifies notifications and deterministic
unsubscription.
*/
func TestSessionStore_Subscribe(t *testing.T) {
	store := auth.NewSessionStore(&stubAuthenticator{
		login: func(context.Context, auth.LoginInput) (*auth.User, error) {
			return &auth.User{ID: "u1"}, nil
		},
		logout: func(context.Context) error { return nil },
	}, quietLogger)

	var seen []auth.Status
	sub := store.Subscribe(func(snapshot auth.SessionSnapshot) {
		seen = append(seen, snapshot.Status)
	})

	ctx := context.Background()
	require.NoError(t, store.Login(ctx, auth.LoginInput{}))
	require.NoError(t, store.Logout(ctx))

	sub.Close()
	sub.Close()
	require.NoError(t, store.Login(ctx, auth.LoginInput{}))

	assert.Equal(t, []auth.Status{auth.StatusAuthenticated, auth.StatusUnauthenticated}, seen)
}

/*
TestSessionStore_UserIsCopy verifies readers cannot alter the store.
*/
func TestSessionStore_UserIsCopy(t *testing.T) {
	store := auth.NewSessionStore(&stubAuthenticator{
		login: func(context.Context, auth.LoginInput) (*auth.User, error) {
			return &auth.User{ID: "u1", Name: "A"}, nil
		},
	}, quietLogger)
	require.NoError(t, store.Login(context.Background(), auth.LoginInput{}))

	store.User().Name = "changed"
	assert.Equal(t, "A", store.User().Name)
}
