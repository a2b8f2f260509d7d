package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidName rejects collection or kind names that cannot become safe
// path components.
var ErrInvalidName = errors.New("invalid dataset name")

const maxNameLength = 100

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_ -]*$`)

// SanitizeName validates a raw collection or kind name and returns its
// canonical lower-cased form. Names are restricted to a conservative
// character set so they can never traverse outside the store root.
func SanitizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(trimmed) > maxNameLength {
		return "", fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidName, name, maxNameLength)
	}
	if strings.ContainsAny(trimmed, `/\`) || strings.Contains(trimmed, "..") {
		return "", fmt.Errorf("%w: %q contains path separators", ErrInvalidName, name)
	}
	if !namePattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return strings.ToLower(trimmed), nil
}
