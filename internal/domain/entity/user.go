// Package entity contains the core business objects of the portal,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"
)

// User is a points holder, identified by a normalized Telegram handle.
type User struct {
	ID           int64
	Handle       string  // Canonical "@lowercase" form, unique.
	Points       int     // Balance. Only redemption keeps it non-negative; admins may set anything.
	PasswordHash *string // Nil until the user registers; admin point grants create users without one.
	CreatedAt    time.Time
}

// HasPassword reports whether the user completed registration.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// NormalizeHandle trims raw, prefixes "@" when missing and lowercases it.
// Blank input yields ok=false.
func NormalizeHandle(raw string) (handle string, ok bool) {
	handle = strings.TrimSpace(raw)
	if handle == "" {
		return "", false
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	return strings.ToLower(handle), true
}

// Identity is the caller as resolved from session state.
type Identity struct {
	Handle string // Empty when the caller is anonymous.
	Admin  bool
}

func (i Identity) Authenticated() bool {
	return i.Handle != ""
}
