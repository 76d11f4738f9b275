package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medscan/internal/common"
)

// renderError turns a command failure into the text shown to the user.
// Field errors are listed per field; a miss is informational.
func renderError(err error) string {
	var ve *common.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		lines := make([]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			lines = append(lines, fmt.Sprintf("  %s: %s", f.Field, f.Message))
		}
		return "Please check your input:\n" + strings.Join(lines, "\n")
	}

	switch common.KindOf(err) {
	case common.KindValidation:
		return "Please check your input: " + err.Error()
	case common.KindAuth:
		if field := common.FieldOf(err); field != "" {
			return fmt.Sprintf("  %s: %s", field, err.Error())
		}
		return "Authentication failed: " + err.Error()
	case common.KindNotFound:
		return "No results found."
	case common.KindSignUpRequired:
		return "Please sign up or log in first."
	case common.KindStorage:
		return "Local storage error: " + err.Error()
	case common.KindTimeout:
		return "The request timed out. Please try again."
	default:
		return "Network error. Please check your connection and try again."
	}
}
