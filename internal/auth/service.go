// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/taibuivan/vizion/internal/platform/constants"
	"github.com/taibuivan/vizion/internal/platform/transport"
)

// # Contracts & Types

// Requester is the subset of the transport client the auth endpoints need.
type Requester interface {
	Get(ctx context.Context, path string) (*transport.Envelope, error)
	PostJSON(ctx context.Context, path string, body any) (*transport.Envelope, error)
}

// Service maps the session operations onto API calls.
//
// Errors from the transport are returned unchanged.
type Service struct {
	client Requester
}

// NewService constructs a [Service] over the given transport.
func NewService(client Requester) *Service {
	return &Service{client: client}
}

// Register creates an account and signs it in.
//
// POST /auth/register
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	return service.postUser(ctx, constants.PathRegister, input)
}

// Login signs in with email and password.
//
// POST /auth/login
func (service *Service) Login(ctx context.Context, input LoginInput) (*User, error) {
	return service.postUser(ctx, constants.PathLogin, input)
}

// CurrentUser returns the user the session cookie belongs to.
//
// GET /auth/me
func (service *Service) CurrentUser(ctx context.Context) (*User, error) {
	envelope, err := service.client.Get(ctx, constants.PathMe)
	if err != nil {
		return nil, err
	}
	return decodeUser(envelope)
}

// Logout ends the server-side session.
//
// POST /auth/logout
func (service *Service) Logout(ctx context.Context) error {
	_, err := service.client.PostJSON(ctx, constants.PathLogout, nil)
	return err
}

func (service *Service) postUser(ctx context.Context, path string, body any) (*User, error) {
	envelope, err := service.client.PostJSON(ctx, path, body)
	if err != nil {
		return nil, err
	}
	return decodeUser(envelope)
}

func decodeUser(envelope *transport.Envelope) (*User, error) {
	user, err := transport.DecodeData[User](envelope)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
