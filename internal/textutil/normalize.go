package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize canonicalizes a tag value for comparison: lowercase,
// diacritics stripped, punctuation replaced with spaces, whitespace
// collapsed. The result is stable for identical inputs, which keeps
// distance computations deterministic.
func Normalize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if stripped, _, err := transform.String(diacriticStripper, value); err == nil {
		value = stripped
	}
	var b strings.Builder
	b.Grow(len(value))
	lastSpace := false
	for _, r := range value {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// IdentityToken builds the normalized identity component used to decide
// whether two records describe the same album or track. Empty input
// yields "unknown" so identity keys never collapse to the empty string.
func IdentityToken(value string) string {
	normalized := Normalize(value)
	if normalized == "" {
		return "unknown"
	}
	return strings.ReplaceAll(normalized, " ", "_")
}
