// Package model contains domain models shared by the service, session and HTTP layers.
// Models carry no database-specific dependencies or tags.
package model

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User is an authenticated account joined with its profile.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Name returns the display name, falling back to the email's local part.
func (u User) Name() string {
	if n := strings.TrimSpace(u.DisplayName); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

// Initials returns up to two upper-case initials of the user's name.
func (u User) Initials() string {
	var b strings.Builder
	n := 0
	for _, part := range strings.Fields(u.Name()) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		n++
		if n == 2 {
			break
		}
	}
	return b.String()
}
