package service

import (
	"errors"
	"fmt"
)

// Store error kinds. The store backend decides the kind.
var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrUnknown            = errors.New("store failure")
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("not logged in")

// StoreError reports a failed store operation.
type StoreError struct {
	Op         string // "subscribe", "query", "create", "update", "delete", "batch delete"
	Collection string
	ID         string
	Kind       error
	Err        error
}

func (e *StoreError) Error() string {
	target := e.Collection
	if e.ID != "" {
		target += "/" + e.ID
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, target, e.kind())
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, target, e.kind(), e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind()}
	}
	return []error{e.kind(), e.Err}
}

func (e *StoreError) kind() error {
	if e.Kind == nil {
		return ErrUnknown
	}
	return e.Kind
}

// AuthError reports a failed sign-in or sign-out.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError reports a rejected input, detected before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuth reports whether err is an AuthError or ErrNotAuthenticated.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae) || errors.Is(err, ErrNotAuthenticated)
}
