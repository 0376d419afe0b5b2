package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameRunes = 128

// SanitizeFileName flattens path separators, drops control characters and
// rejects traversal patterns. The result is capped at 128 runes.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if runes := []rune(s); len(runes) > maxFileNameRunes {
		s = string(runes[len(runes)-maxFileNameRunes:])
	}
	return s, nil
}
