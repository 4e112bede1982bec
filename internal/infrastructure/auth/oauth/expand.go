package oauth

import (
	"fmt"
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// MissingVariableError reports a template field referencing a variable that
// is not defined in the substitution set.
type MissingVariableError struct {
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("variable %q is not defined", e.Variable)
}

// Expand substitutes every {variable} reference in s from vars. A reference
// to an undefined variable is a recoverable per-field error, not a crash:
// the caller disables the provider that owns the field.
func Expand(s string, vars map[string]string) (string, error) {
	var missing *MissingVariableError
	expanded := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		value, defined := vars[name]
		if !defined {
			if missing == nil {
				missing = &MissingVariableError{Variable: name}
			}
			return match
		}
		return value
	})
	if missing != nil {
		return "", missing
	}
	return expanded, nil
}
