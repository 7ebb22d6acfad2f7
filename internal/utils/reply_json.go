package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoObject is returned when a model reply holds no usable JSON object.
var ErrNoObject = errors.New("no JSON object in reply")

var (
	fencedBlockRe  = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe      = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharsRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ExtractReplyObject pulls a JSON object out of a chat model reply. Replies
// come as bare JSON, fenced in a markdown block, embedded in prose, or with
// the usual slips (trailing commas, unquoted keys, single quotes).
func ExtractReplyObject(reply string) (map[string]any, error) {
	reply = strings.TrimPrefix(strings.TrimSpace(reply), "\ufeff")
	if reply == "" {
		return nil, ErrNoObject
	}

	candidates := []string{reply}
	if m := fencedBlockRe.FindStringSubmatch(reply); len(m) > 1 {
		candidates = append(candidates, m[1])
	}
	if start := strings.IndexByte(reply, '{'); start >= 0 {
		if obj := balancedObject(reply[start:]); obj != "" {
			candidates = append(candidates, obj)
		}
	}

	for _, c := range candidates {
		if obj, ok := decodeObject(c); ok {
			return obj, nil
		}
	}
	for _, c := range candidates {
		if obj, ok := decodeObject(repairJSON(c)); ok {
			return obj, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoObject, truncate(reply, 100))
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// balancedObject returns the leading {...} of s, honouring string literals.
func balancedObject(s string) string {
	depth := 0
	inString := false
	escape := false

	for i, ch := range s {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

func repairJSON(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")
	s = singleToDoubleQuotes(s)
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	return controlCharsRe.ReplaceAllString(s, "")
}

// singleToDoubleQuotes swaps quote characters outside double-quoted strings.
// Apostrophes inside words are left alone.
func singleToDoubleQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inDouble := false
	escape := false
	var prev rune

	for _, ch := range s {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inDouble = !inDouble
		case ch == '\'' && !inDouble && !isWordRune(prev):
			ch = '"'
		case ch == '\'' && !inDouble && isWordRune(prev):
			if next := nextNonSpace(s, b.Len()+1); next == ':' || next == ',' || next == '}' {
				ch = '"'
			}
		}
		b.WriteRune(ch)
		prev = ch
	}
	return b.String()
}

func nextNonSpace(s string, from int) byte {
	for i := from; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' && s[i] != '\n' && s[i] != '\r' {
			return s[i]
		}
	}
	return 0
}

func isWordRune(r rune) bool {
	return r == '_' || r == '.' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
