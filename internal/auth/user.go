// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the client side of user identity: the request
builders for the /auth endpoints and the session store that tracks who is
signed in.

# Architecture

  - Service: one method per endpoint, no state, errors passed through.
  - SessionStore: the client's belief about the current user, with the
    Loading → Authenticated | Unauthenticated state machine.
  - Forms: boundary validation of sign-in and sign-up input.
*/
package auth

// # Domain Entities

// User is the account the API reports for the current session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// CreatedAt is kept as sent by the server (RFC 3339).
	CreatedAt string `json:"created_at"`
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// # Field Identifiers

const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
)
