package common

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeEmail trims and case-folds an address so that "Ada@Example.com"
// and "ada@example.com " name the same account.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
