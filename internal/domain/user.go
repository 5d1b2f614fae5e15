// Package domain contains core domain types for the dslabs application.
package domain

import (
	"time"
)

// Theme is the visitor's colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// User represents an anonymous visitor and their preferences.
type User struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Theme      Theme     `json:"theme"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionTTL returns the time left before the visitor counts as idle.
// Returns 0 if that moment has already passed.
func (u *User) SessionTTL(idleAfter time.Duration) time.Duration {
	ttl := time.Until(u.LastSeenAt.Add(idleAfter))
	if ttl < 0 {
		return 0
	}
	return ttl
}
