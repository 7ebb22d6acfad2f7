package utils

import (
	"strings"
	"unicode"
)

// NormalizeFieldKey folds a field name for alias comparison.
// "Body Temp", "body_temp" and "bodyTemp" all normalize to "bodytemp".
func NormalizeFieldKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.TrimSpace(key) {
		if r == ' ' || r == '_' || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// MatchFieldAlias reports whether term names the same field as canonical
// or any of its aliases.
func MatchFieldAlias(term, canonical string, aliases []string) bool {
	normalized := NormalizeFieldKey(term)
	if normalized == "" {
		return false
	}

	if normalized == NormalizeFieldKey(canonical) {
		return true
	}

	for _, alias := range aliases {
		if normalized == NormalizeFieldKey(alias) {
			return true
		}
	}

	return false
}

// NormalizeWhitespace collapses newlines and runs of whitespace into single
// spaces and trims the result.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
