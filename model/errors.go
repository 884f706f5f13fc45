package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("invalid feed request")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBackend      = errors.New("backend failure")
)

// ValidationError is a malformed or contradictory FilterSpec. It is always
// reported before any query runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid feed request: %s", e.Reason)
	}
	return fmt.Sprintf("invalid feed request: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError is a scope selector that resolves to nothing.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(kind string, key any) error {
	return &NotFoundError{Kind: kind, Key: fmt.Sprint(key)}
}

// AuthorizationError is a request the viewer may not make.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "unauthorized: " + e.Reason
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrUnauthorized }

// Unauthorized builds an AuthorizationError.
func Unauthorized(reason string) error {
	return &AuthorizationError{Reason: reason}
}

// BackendError wraps a failure of the database or another store.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// Backend wraps err as a BackendError unless it already carries one of the
// typed failures above.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrBackend) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}
