package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"validation struct", &ValidationError{Fields: []FieldError{{Field: "email", Message: "x"}}}, KindValidation},
		{"wrapped unregistered", fmt.Errorf("login: %w", ErrUnregisteredEmail), KindAuth},
		{"field wrapped wrong password", &FieldErr{Field: "password", Err: ErrWrongPassword}, KindAuth},
		{"not found", ErrNotFound, KindNotFound},
		{"sign up required", ErrSignUpRequired, KindSignUpRequired},
		{"signed out", ErrSignedOut, KindSignUpRequired},
		{"storage", fmt.Errorf("%w: disk full", ErrStorage), KindStorage},
		{"timeout", ErrTimeout, KindTimeout},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"unknown", errors.New("boom"), KindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestValidationError_MessageAndField(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "firstName", Message: "Please enter First Name."},
		{Field: "password", Message: "Password must be at least 8 characters long."},
	}}

	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "firstName", FieldOf(err))

	msg, ok := err.Message("password")
	require.True(t, ok)
	assert.Equal(t, "Password must be at least 8 characters long.", msg)

	_, ok = err.Message("email")
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "firstName: Please enter First Name.")
}

func TestFieldOf_WrappedFieldErr(t *testing.T) {
	err := fmt.Errorf("login: %w", &FieldErr{Field: "email", Err: ErrUnregisteredEmail})
	assert.Equal(t, "email", FieldOf(err))
	assert.Equal(t, "", FieldOf(ErrNotFound))
	assert.ErrorIs(t, err, ErrUnregisteredEmail)
}

func TestCodeFor_RoundTrip(t *testing.T) {
	for _, sentinel := range []error{
		ErrUnregisteredEmail, ErrWrongPassword, ErrDuplicateEmail,
		ErrNoChallenge, ErrInvalidCode, ErrNotFound, ErrUnauthorized,
	} {
		code, status := CodeFor(fmt.Errorf("wrapped: %w", sentinel))
		require.NotEqual(t, CodeInternal, code, sentinel.Error())
		require.NotZero(t, status)

		back, _, ok := ErrorForCode(code)
		require.True(t, ok)
		assert.ErrorIs(t, back, sentinel)
	}
}

func TestCodeFor_Unknown(t *testing.T) {
	code, status := CodeFor(errors.New("db exploded"))
	assert.Equal(t, CodeInternal, code)
	assert.Equal(t, http.StatusInternalServerError, status)

	_, _, ok := ErrorForCode("NO_SUCH_CODE")
	assert.False(t, ok)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
	assert.Equal(t, NormalizeEmail("ADA@x.io"), NormalizeEmail("ada@X.IO"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestCodeFor_InvalidTokenIsUnauthorized(t *testing.T) {
	code, status := CodeFor(ErrInvalidToken)
	assert.Equal(t, CodeUnauthorized, code)
	assert.Equal(t, http.StatusUnauthorized, status)

	back, _, ok := ErrorForCode(code)
	require.True(t, ok)
	assert.ErrorIs(t, back, ErrUnauthorized)
}
