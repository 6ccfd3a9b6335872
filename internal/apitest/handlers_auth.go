// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apitest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/vizion/internal/auth"
	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/constants"
	"github.com/taibuivan/vizion/internal/platform/validate"
)

// # Seeding

// AddUser registers an account directly and returns it.
func (server *Server) AddUser(name, email, password string) (auth.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return auth.User{}, err
	}

	user := auth.User{
		ID:        newID(),
		Name:      name,
		Email:     strings.ToLower(email),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	if _, exists := server.accounts[user.Email]; exists {
		return auth.User{}, apperr.Validation("Email already registered")
	}
	server.accounts[user.Email] = &account{user: user, passwordHash: hash}

	return user, nil
}

func (server *Server) userExists(userID string) bool {
	_, ok := server.userByID(userID)
	return ok
}

func (server *Server) userByID(userID string) (auth.User, bool) {
	server.mu.Lock()
	defer server.mu.Unlock()

	for _, acc := range server.accounts {
		if acc.user.ID == userID {
			return acc.user, true
		}
	}
	return auth.User{}, false
}

// # Handlers

// register handles POST /auth/register.
func (server *Server) register(writer http.ResponseWriter, request *http.Request) {
	var input auth.RegisterInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeError(writer, http.StatusBadRequest, apperr.CodeValidation, "Invalid request body")
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldName, input.Name).
		Required(auth.FieldEmail, input.Email).
		Email(auth.FieldEmail, input.Email).
		MinLen(auth.FieldPassword, input.Password, 8)
	if err := validator.Err(); err != nil {
		writeValidation(writer, err)
		return
	}

	user, err := server.AddUser(input.Name, input.Email, input.Password)
	if err != nil {
		writeError(writer, http.StatusConflict, apperr.CodeConflict, "Email already registered")
		return
	}

	if !server.startSession(writer, user.ID) {
		return
	}
	writeCreated(writer, "User registered successfully", user)
}

// login handles POST /auth/login.
func (server *Server) login(writer http.ResponseWriter, request *http.Request) {
	var input auth.LoginInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeError(writer, http.StatusBadRequest, apperr.CodeValidation, "Invalid request body")
		return
	}

	server.mu.Lock()
	acc, found := server.accounts[strings.ToLower(input.Email)]
	server.mu.Unlock()

	if !found || !checkPassword(input.Password, acc.passwordHash) {
		writeUnauthorized(writer, "Invalid email or password")
		return
	}

	if !server.startSession(writer, acc.user.ID) {
		return
	}
	writeOK(writer, "Login successful", acc.user)
}

// me handles GET /auth/me.
func (server *Server) me(writer http.ResponseWriter, request *http.Request) {
	user, found := server.userByID(currentUserID(request))
	if !found {
		writeUnauthorized(writer, "Invalid or expired session")
		return
	}
	writeOK(writer, "User retrieved successfully", user)
}

// logout handles POST /auth/logout. It always clears the cookie.
func (server *Server) logout(writer http.ResponseWriter, _ *http.Request) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeOK(writer, "Logout successful", nil)
}

// startSession sets the session cookie. It answers 500 itself on failure.
func (server *Server) startSession(writer http.ResponseWriter, userID string) bool {
	token, err := server.tokens.issue(userID)
	if err != nil {
		writeInternal(writer)
		return false
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(constants.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}
