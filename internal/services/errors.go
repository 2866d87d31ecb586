package services

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrInvalidRefresh  = errors.New("invalid or expired refresh token")
)

// Login outcomes. The messages are part of the API: they are returned as the
// problem detail of a 401 login response.
var (
	ErrLoginFailed       = errors.New("Failed")
	ErrLockedOut         = errors.New("LockedOut")
	ErrNotAllowed        = errors.New("NotAllowed")
	ErrRequiresTwoFactor = errors.New("RequiresTwoFactor")
)

// ValidationError carries per-field messages. Messages are English catalog
// keys; handlers render them in the request culture.
type ValidationError struct {
	Errors map[string][]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: map[string][]string{field: {message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for field, msgs := range e.Errors {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
