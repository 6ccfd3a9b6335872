// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error taxonomy of the Vizion client.

Every failure reported by the backend, and every failure of the transport
itself, surfaces as an [*APIError]. Anything else is a generic error.

Architecture:

  - APIError: machine-readable Code, HTTP Status (0 when no response was
    obtained), a displayable Message and optional field-level Errors.
  - Surface: the single rule the stores use to re-raise errors to callers.

Callers are expected to show [APIError.Message] to the user.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNetwork      = "NETWORK_ERROR"
	CodeUnknown      = "UNKNOWN_ERROR"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidFile  = "INVALID_FILE"
	CodeInternal     = "INTERNAL_ERROR"
)

// DefaultMessage is used when neither the body nor the status line says anything.
const DefaultMessage = "An error occurred"

// APIError is the typed failure returned by the transport client.
//
// It mirrors the error envelope of the API: {code, message, errors?}.
type APIError struct {
	// Message is the human-readable description, safe to display.
	Message string `json:"message"`
	// Code is a machine-readable identifier (e.g. "NOT_FOUND").
	Code string `json:"code"`
	// Status is the HTTP status code, or 0 for transport-level failures.
	Status int `json:"-"`
	// Errors holds per-field validation failures, if the server sent any.
	Errors []FieldError `json:"errors,omitempty"`
	// Cause is the underlying error for network failures. Never displayed.
	Cause error `json:"-"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the displayable message.
func (e *APIError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *APIError) Unwrap() error { return e.Cause }

// # Constructors

// Network creates a NETWORK_ERROR for failures that happened before a status
// line was obtained (dial, DNS, TLS, malformed body).
func Network(cause error) *APIError {
	message := "Network error"
	if cause != nil && cause.Error() != "" {
		message = cause.Error()
	}
	return &APIError{
		Message: message,
		Code:    CodeNetwork,
		Status:  0,
		Cause:   cause,
	}
}

// Unknown creates an UNKNOWN_ERROR for a non-success response whose body could
// not be parsed.
//
// Example:
//
//	apperr.Unknown(502, "Bad Gateway")
func Unknown(status int, statusText string) *APIError {
	if statusText == "" {
		statusText = DefaultMessage
	}
	return &APIError{
		Message: statusText,
		Code:    CodeUnknown,
		Status:  status,
	}
}

// Validation creates a client-side VALIDATION_ERROR (Status 0).
func Validation(msg string, errs ...FieldError) *APIError {
	return &APIError{
		Message: msg,
		Code:    CodeValidation,
		Errors:  errs,
	}
}

// # Helpers

// IsAPIError reports whether err (or any error in its chain) is an [*APIError].
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// As extracts the [*APIError] from err's chain. It returns nil if not found.
func As(err error) *APIError {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsUnauthenticated reports whether err is a 401 or 403 answer from the server,
// i.e. the routine "not logged in" outcome.
func IsUnauthenticated(err error) bool {
	ae := As(err)
	if ae == nil {
		return false
	}
	return ae.Status == http.StatusUnauthorized || ae.Status == http.StatusForbidden
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == CodeNetwork
}

// Surface prepares err for the caller of a store operation.
//
// Typed errors pass through untouched. Anything else becomes a generic error
// carrying fallback as its message, with err kept in the chain.
func Surface(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if IsAPIError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", fallback, err)
}

// FieldMessage returns the first message reported for field, or "".
func (e *APIError) FieldMessage(field string) string {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}
