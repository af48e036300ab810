package schema

import (
	"strings"
	"unicode"
)

// MaxNickLength bounds a nick in runes.
const MaxNickLength = 32

// NormalizeNick trims a nick and rejects empty, overlong, or control-bearing values.
func NormalizeNick(nick string) (Nick, error) {
	trimmed := strings.TrimSpace(nick)
	if trimmed == "" {
		return "", ErrInvalidNick
	}
	count := 0
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", ErrInvalidNick
		}
		count++
	}
	if count > MaxNickLength {
		return "", ErrInvalidNick
	}
	return Nick(trimmed), nil
}
