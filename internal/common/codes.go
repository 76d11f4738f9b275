package common

import (
	"errors"
	"net/http"
)

// Wire error codes exchanged between the MedScan API and its clients in the
// "code" field of an error body.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeEmailNotFound = "EMAIL_NOT_REGISTERED"
	CodeWrongPassword = "WRONG_PASSWORD"
	CodeEmailTaken    = "EMAIL_TAKEN"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeNotFound      = "NOT_FOUND"
	CodeNoChallenge   = "NO_CHALLENGE"
	CodeInvalidCode   = "INVALID_CODE"
	CodeTokenExpired  = "TOKEN_EXPIRED"
	CodeInternal      = "INTERNAL_ERROR"
	CodeInvalidJSON   = "INVALID_JSON"
	CodeForbidden     = "FORBIDDEN"
)

type codeEntry struct {
	code   string
	status int
	err    error
	field  string
}

var codeTable = []codeEntry{
	{CodeValidation, http.StatusBadRequest, ErrValidation, ""},
	{CodeInvalidJSON, http.StatusBadRequest, ErrValidation, ""},
	{CodeEmailNotFound, http.StatusNotFound, ErrUnregisteredEmail, "email"},
	{CodeWrongPassword, http.StatusUnauthorized, ErrWrongPassword, "password"},
	{CodeEmailTaken, http.StatusConflict, ErrDuplicateEmail, "email"},
	{CodeNoChallenge, http.StatusBadRequest, ErrNoChallenge, "code"},
	{CodeInvalidCode, http.StatusBadRequest, ErrInvalidCode, "code"},
	{CodeTokenExpired, http.StatusUnauthorized, ErrTokenExpired, ""},
	{CodeUnauthorized, http.StatusUnauthorized, ErrUnauthorized, ""},
	{CodeUnauthorized, http.StatusUnauthorized, ErrInvalidToken, ""},
	{CodeForbidden, http.StatusForbidden, ErrUnauthorized, ""},
	{CodeNotFound, http.StatusNotFound, ErrNotFound, ""},
}

// CodeFor returns the wire code and HTTP status for err. Unknown errors map
// to CodeInternal / 500.
func CodeFor(err error) (string, int) {
	for _, e := range codeTable {
		if errors.Is(err, e.err) {
			return e.code, e.status
		}
	}
	return CodeInternal, http.StatusInternalServerError
}

// ErrorForCode is the inverse of CodeFor: it returns the sentinel and the
// form field for a wire code. ok is false for unknown codes.
func ErrorForCode(code string) (err error, field string, ok bool) {
	for _, e := range codeTable {
		if e.code == code {
			return e.err, e.field, true
		}
	}
	return nil, "", false
}
