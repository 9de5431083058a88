package domain

import (
	"strings"
)

// NormalizeEmail trims and lowercases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CompactSpaces trims text and collapses runs of spaces into one.
// Case is preserved; it is applied to nicknames and book metadata.
func CompactSpaces(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OptionalText compacts s and returns nil when the result is empty.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := CompactSpaces(*s)
	if v == "" {
		return nil
	}
	return &v
}
