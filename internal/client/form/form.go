// Package form validates user input before it is sent to the backend.
// A failed validation never reaches the network.
package form

import (
	"maps"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// MaxImageSize bounds avatars, cover images and thumbnails.
	MaxImageSize = 5 << 20
	// MaxVideoSize bounds uploaded video files.
	MaxVideoSize = 100 << 20
)

// Errors maps a field name to the message shown next to it.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range slices.Sorted(maps.Keys(e)) {
		parts = append(parts, field+": "+e[field])
	}
	return strings.Join(parts, "; ")
}

// orNil keeps a typed empty map out of an error interface.
func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidEmail reports whether s is a bare address with a dotted domain.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return strings.Contains(s[at+1:], ".")
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func tooShort(s string, n int) bool { return utf8.RuneCountInString(s) < n }
