// Package util holds the small parsing and event-adaptation primitives
// shared by the uri, packer, and container packages.
package util

import (
	"strconv"
	"strings"

	"github.com/celeryq/gocelery/internal/errors"
)

// ParseInteger parses s as 0b-binary, 0x-hex, 0-leading octal, or decimal,
// mirroring the grammar a shell or a C-family integer literal accepts.
//
//	"0xdeadBEEF" -> 3735928559
//	"0b1111"     -> 15
//	"010"        -> 8   (leading zero, octal)
//	"08"         -> error (8 is not a valid octal digit)
func ParseInteger(s string) (int64, error) {
	const op = "util.ParseInteger"
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, errors.E(errors.Op(op), errors.ParseError, "empty integer")
	}
	neg := false
	body := trimmed
	if body[0] == '+' || body[0] == '-' {
		neg = body[0] == '-'
		body = body[1:]
	}
	base := 10
	switch {
	case hasFoldPrefix(body, "0b"):
		base = 2
		body = body[2:]
	case hasFoldPrefix(body, "0x"):
		base = 16
		body = body[2:]
	case len(body) > 1 && body[0] == '0':
		base = 8
		body = body[1:]
	}
	if body == "" {
		return 0, errors.E(errors.Op(op), errors.ParseError, "no digits after base prefix")
	}
	n, err := strconv.ParseInt(body, base, 64)
	if err != nil {
		return 0, errors.E(errors.Op(op), errors.ParseError, err)
	}
	if neg {
		n = -n
	}
	return n, nil
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// ParseBoolean accepts the case-insensitive spellings true/on/yes/1 and
// false/off/no/0; anything else is a ParseError.
func ParseBoolean(s string) (bool, error) {
	const op = "util.ParseBoolean"
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	default:
		return false, errors.E(errors.Op(op), errors.ParseError, "invalid boolean: "+s)
	}
}

// ToCamelCase converts snake_case to camelCase by removing underscores and
// uppercasing the letter that follows each one. It is idempotent on
// already-camelCase input.
func ToCamelCase(s string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range s {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(toUpperASCII(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func toUpperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
