package dto

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

func validEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

func lengthMessage(s string, min, max int) string {
	n := utf8.RuneCountInString(s)
	switch {
	case n < min:
		return fmt.Sprintf("Must contain at least %d character(s)", min)
	case max > 0 && n > max:
		return fmt.Sprintf("Must contain at most %d character(s)", max)
	}
	return ""
}

// ParseID parses a path identifier, reporting field-level detail on failure.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalid(field, "Invalid uuid")
	}
	return id, nil
}
