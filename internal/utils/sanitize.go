// Package utils holds small helpers shared across packages
package utils

import (
	"log/slog"
	"strings"
	"unicode"
)

// MaxLogStringLength defines the maximum length for user-provided strings in logs
const MaxLogStringLength = 200

// SanitizeLogString makes a client supplied string safe to put in a log record.
// Control characters become spaces, other non-printable runes are dropped and
// the result is truncated.
func SanitizeLogString(input string) string {
	if input == "" {
		return ""
	}

	truncated := false
	if len(input) > MaxLogStringLength {
		input = input[:MaxLogStringLength]
		truncated = true
	}

	input = strings.ReplaceAll(input, "\r\n", "\n")

	sanitized := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return ' '
		case r == unicode.ReplacementChar, !unicode.IsPrint(r) && !unicode.IsSpace(r):
			return -1
		}
		return r
	}, input)

	if truncated {
		sanitized += "... (truncated)"
	}
	return sanitized
}

// Attr returns a slog string attribute with a sanitized value
func Attr(key, value string) slog.Attr {
	return slog.String(key, SanitizeLogString(value))
}
