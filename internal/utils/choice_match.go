package utils

import (
	"strings"
)

// NormalizeChoice reduces a choice value, label or alias to a comparable form.
// Case, surrounding space and the "England and Wales:" band prefix are
// ignored. Dashes and underscores compare equal to a single space.
func NormalizeChoice(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "england and wales:"))
	s = strings.NewReplacer("–", " ", "—", " ", "-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
