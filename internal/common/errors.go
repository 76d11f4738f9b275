// Package common defines shared constants and sentinel errors used across
// client and server layers of MedScan. Callers should use errors.Is to
// match these values.
package common

import (
	"context"
	"errors"
	"strings"
)

var (
	// Validation errors (field-level, recovered by the caller).
	ErrValidation = errors.New("validation failed")

	// Auth errors.
	ErrUnregisteredEmail = errors.New("this email is not registered")
	ErrWrongPassword     = errors.New("wrong password")
	ErrDuplicateEmail    = errors.New("this email is already registered")
	ErrUnauthorized      = errors.New("unauthorized")

	// Lookup misses (medicine search, OCR no-match, unknown profile).
	ErrNotFound = errors.New("not found")

	// Session gating.
	ErrSignUpRequired = errors.New("sign up required")
	ErrSignedOut      = errors.New("signed out")

	// Password reset.
	ErrNoChallenge = errors.New("no verification code found, please request a new code")
	ErrInvalidCode = errors.New("invalid verification code")

	// Infrastructure.
	ErrStorage = errors.New("local storage error")
	ErrNetwork = errors.New("network error")
	ErrTimeout = errors.New("request timed out")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Kind is the user-facing error category.
type Kind string

const (
	KindNone           Kind = ""
	KindValidation     Kind = "validation"
	KindAuth           Kind = "auth"
	KindNotFound       Kind = "not_found"
	KindSignUpRequired Kind = "sign_up_required"
	KindStorage        Kind = "storage"
	KindNetwork        Kind = "network"
	KindTimeout        Kind = "timeout"
)

// KindOf classifies err. Errors that match none of the sentinels are
// reported as KindNetwork, since every other failure comes from a remote call.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnregisteredEmail),
		errors.Is(err, ErrWrongPassword),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrNoChallenge),
		errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return KindAuth
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrSignUpRequired), errors.Is(err, ErrSignedOut):
		return KindSignUpRequired
	case errors.Is(err, ErrStorage):
		return KindStorage
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindNetwork
	}
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects the field-level failures of one form submission.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// FieldName returns the first failing field.
func (e *ValidationError) FieldName() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Field
}

// Message returns the message recorded for field, if any.
func (e *ValidationError) Message(field string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message, true
		}
	}
	return "", false
}

// FieldErr attaches the form field a non-validation failure belongs to,
// e.g. "email" for ErrUnregisteredEmail.
type FieldErr struct {
	Field string
	Err   error
}

func (e *FieldErr) Error() string { return e.Err.Error() }
func (e *FieldErr) Unwrap() error { return e.Err }
func (e *FieldErr) FieldName() string { return e.Field }

// FieldOf reports the form field err should be shown next to, or "" when
// the error is not tied to a field.
func FieldOf(err error) string {
	var f interface{ FieldName() string }
	if errors.As(err, &f) {
		return f.FieldName()
	}
	return ""
}
