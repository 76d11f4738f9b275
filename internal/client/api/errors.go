package api

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/medscan/internal/common"
)

// Error is a non-2xx reply decoded into a sentinel from package common and
// the form field it concerns.
type Error struct {
	Status  int
	Code    string
	Field   string
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) FieldName() string { return e.Field }

// Kind is the error category of e.
func (e *Error) Kind() common.Kind { return common.KindOf(e.err) }

// newError maps an error body to *Error. A known code wins; otherwise the
// status picks the sentinel and the field is guessed from the message text.
func newError(status int, body ErrorResponse) *Error {
	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	e := &Error{Status: status, Code: body.Code, Message: msg}

	if sentinel, field, ok := common.ErrorForCode(body.Code); ok {
		e.err, e.Field = sentinel, field
		if body.Field != "" {
			e.Field = body.Field
		}
		return e
	}

	e.Field = fieldFromMessage(msg)
	e.err = sentinelFromStatus(status, e.Field)
	return e
}

func sentinelFromStatus(status int, field string) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
		switch {
		case field == "email" && status != http.StatusBadRequest:
			return common.ErrUnregisteredEmail
		case field == "password" && status != http.StatusNotFound:
			return common.ErrWrongPassword
		case status == http.StatusBadRequest:
			return common.ErrValidation
		case status == http.StatusUnauthorized:
			return common.ErrUnauthorized
		default:
			return common.ErrNotFound
		}
	case http.StatusForbidden:
		return common.ErrUnauthorized
	case http.StatusConflict:
		return common.ErrDuplicateEmail
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return common.ErrTimeout
	default:
		return common.ErrNetwork
	}
}

// fieldFromMessage is the fallback for servers that send free text only.
func fieldFromMessage(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "email"):
		return "email"
	case strings.Contains(lower, "password"), strings.Contains(lower, "credentials"):
		return "password"
	}
	return ""
}
