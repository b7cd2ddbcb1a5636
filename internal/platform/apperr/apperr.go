// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error vocabulary shared by every Memberdesk layer.

A storage or domain failure that should reach a client is expressed as an
[AppError]. The HTTP edge (respond.Error, the access guard) turns it into a
status code and the JSON envelope. Anything that is not an AppError is treated
as an internal failure and its details stay in the logs.

Codes:

  - Generic: not_found, conflict, validation_error, rate_limited, internal_error.
  - Identity: invalid_credentials, not_authenticated, not_authorized,
    token_invalid, duplicate_registration.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes returned in the "code" field of error envelopes.
const (
	CodeNotFound              = "not_found"
	CodeConflict              = "conflict"
	CodeValidation            = "validation_error"
	CodeRateLimited           = "rate_limited"
	CodeUnprocessable         = "unprocessable"
	CodeInternal              = "internal_error"
	CodeServiceUnavailable    = "service_unavailable"
	CodeInvalidCredentials    = "invalid_credentials"
	CodeNotAuthenticated      = "not_authenticated"
	CodeNotAuthorized         = "not_authorized"
	CodeTokenInvalid          = "token_invalid"
	CodeDuplicateRegistration = "duplicate_registration"
)

// AppError is the canonical error type for the Memberdesk API.
//
// # Security
//
// Cause is for server-side logging only and is never sent to clients.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "not_found").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches two AppErrors by code, so sentinel values compare equal to
// copies carrying a different cause.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// WithCause returns a copy of e carrying cause for server-side logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Member") // "Member not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a 409 [AppError] for unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       CodeUnprocessable,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Identity Errors

// InvalidCredentials is returned by login for an unknown email or a wrong
// password alike. The message never says which.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "Invalid credentials",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotAuthenticated is returned when no principal could be resolved.
func NotAuthenticated() *AppError {
	return &AppError{
		Code:       CodeNotAuthenticated,
		Message:    "Not authenticated",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotAuthorized is returned when the principal lacks every required role.
func NotAuthorized() *AppError {
	return &AppError{
		Code:       CodeNotAuthorized,
		Message:    "Not enough permissions",
		HTTPStatus: http.StatusForbidden,
	}
}

// TokenInvalid is returned by endpoints that accept a token explicitly.
func TokenInvalid() *AppError {
	return &AppError{
		Code:       CodeTokenInvalid,
		Message:    "Invalid or expired token",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// DuplicateRegistration is returned when the email is already registered.
func DuplicateRegistration() *AppError {
	return &AppError{
		Code:       CodeDuplicateRegistration,
		Message:    "Email already registered",
		HTTPStatus: http.StatusConflict,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       CodeServiceUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
