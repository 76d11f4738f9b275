// Package validate provides a chainable Validator that collects field-level
// form errors before returning a single *common.ValidationError.
//
// Messages are the user-facing texts shown next to each field.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/medscan/internal/common"
)

// Form field names.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldCode            = "code"
	FieldName            = "name"
	FieldImage           = "image"
)

var emailRegex = regexp.MustCompile(`.+@.+\..+`)

// Validator collects failures via a fluent API. Only the first failure per
// field is kept. It is not safe for concurrent use.
type Validator struct {
	errs []common.FieldError
}

func New() *Validator {
	return &Validator{}
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value, message string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, message)
	}
	return v
}

// Email requires a value of the form x@y.z.
func (v *Validator) Email(field, value string) *Validator {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		v.add(field, "Please enter Email.")
	case !emailRegex.MatchString(value):
		v.add(field, "Please enter a valid email.")
	}
	return v
}

// Password requires at least common.MinPasswordLength characters.
func (v *Validator) Password(field, value string) *Validator {
	if utf8.RuneCountInString(value) < common.MinPasswordLength {
		v.add(field, "Password must be at least 8 characters long.")
	}
	return v
}

// Confirm requires confirm to be present and equal to value.
func (v *Validator) Confirm(field, value, confirm string) *Validator {
	switch {
	case confirm == "":
		v.add(field, "Please confirm your password.")
	case confirm != value:
		v.add(field, "Passwords do not match.")
	}
	return v
}

// Custom adds message for field when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a *common.ValidationError if any rule failed, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &common.ValidationError{Fields: v.errs}
}

func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	for _, e := range v.errs {
		if e.Field == field {
			return
		}
	}
	v.errs = append(v.errs, common.FieldError{Field: field, Message: message})
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// FieldError is a shortcut to create a single-field validation error.
func FieldError(field, message string) error {
	return &common.ValidationError{Fields: []common.FieldError{{Field: field, Message: message}}}
}
