package app

import (
	"strings"

	domainerrors "repograph/internal/core/errors"
)

// ParseRepo splits an "owner/repo" reference. Anything other than exactly
// two non-empty segments is a validation error.
func ParseRepo(raw string) (string, string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", "", domainerrors.New(domainerrors.CodeValidationError, "missing repo, use owner/repo")
	}
	parts := strings.Split(value, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", domainerrors.AddContext(
			domainerrors.New(domainerrors.CodeValidationError, "invalid repo format, use owner/repo"),
			domainerrors.CtxRepo, value)
	}
	return parts[0], parts[1], nil
}
