// Package form sanitizes and validates submitted lead forms.
//
// Bodies arrive as untyped records (decoded JSON objects or form posts). The
// validators narrow them into typed, trimmed submissions or a per-field error
// map. No function in this package returns an error or panics on bad input.
package form

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// emailPattern is the canonical server-side address check: something, an "@",
// something, a dot, something, and no whitespace anywhere.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SanitizeString returns the trimmed value when v is a string and "" otherwise
func SanitizeString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// IsNonEmptyString reports whether v is a string with non-blank content
func IsNonEmptyString(v any) bool {
	return SanitizeString(v) != ""
}

// IsValidEmail trims s and matches it against the canonical address pattern
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// IsValidPhone accepts 10 digits, or 11 digits starting with the country code 1.
// Every non-digit character is ignored.
func IsValidPhone(s string) bool {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}

	switch len(digits) {
	case 10:
		return true
	case 11:
		return digits[0] == '1'
	default:
		return false
	}
}

// EscapeHTML escapes & < > " ' for safe inclusion in an HTML email body
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// length counts code points, so accented names are not penalised for their encoding
func length(s string) int {
	return utf8.RuneCountInString(s)
}
