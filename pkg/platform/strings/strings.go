// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
	"unicode"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// Fold returns the comparison form of a free-text value: trimmed, inner
// whitespace collapsed to single spaces, lower-cased.
//
// Example:
//
//	Fold("  Senior   Engineer ")
//	// Returns: "senior engineer"
func Fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Clean trims s and collapses inner whitespace without changing case.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var latin1Replacer = strings.NewReplacer(
	"–", "-",
	"—", "-",
	"“", `"`,
	"”", `"`,
	"’", "'",
	"‘", "'",
	"…", "...",
	"•", "-",
	"→", "->",
	"©", "(c)",
	"®", "(R)",
	"™", "(TM)",
	"✓", "v",
)

// Latin1 maps common typographic characters onto Latin-1 equivalents and
// replaces anything else outside Latin-1 with '?'.
func Latin1(s string) string {
	s = latin1Replacer.Replace(s)
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxLatin1 {
			return '?'
		}
		return r
	}, s)
}
