// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"strings"

	"github.com/taibuivan/vizion/internal/platform/validate"
)

// # Form Rules

const (
	minNameLength     = 2
	minPasswordLength = 8
)

// SignUpForm is what the user types when creating an account.
// ConfirmPassword exists only on the client and is never transmitted.
type SignUpForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate applies the sign-up rules and returns a VALIDATION_ERROR listing
// every failing field, or nil.
func (form SignUpForm) Validate() error {
	validator := &validate.Validator{}

	validator.MinLen(FieldName, strings.TrimSpace(form.Name), minNameLength).
		Required(FieldEmail, form.Email).
		Email(FieldEmail, form.Email).
		MinLen(FieldPassword, form.Password, minPasswordLength).
		Required(FieldConfirmPassword, form.ConfirmPassword)

	if form.ConfirmPassword != "" {
		validator.Equal(FieldConfirmPassword, form.ConfirmPassword, form.Password, "Passwords do not match.")
	}

	return validator.Err()
}

// Input strips the client-only confirmation field.
func (form SignUpForm) Input() RegisterInput {
	return RegisterInput{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	}
}

// Validate applies the sign-in rules.
func (input LoginInput) Validate() error {
	validator := &validate.Validator{}

	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	return validator.Err()
}
