package email

import (
	"strings"
	"unicode"
)

// Normalize folds an address into its identity form: trimmed and lower-cased.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// DisplayNameFromEmail builds a readable name from the local part of an
// address, e.g. "jane.doe@x.org" becomes "Jane Doe".
func DisplayNameFromEmail(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return ""
	}
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
