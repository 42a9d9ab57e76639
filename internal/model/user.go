// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email and Username are both unique across the table — either can be used
// to look a user up, and registration rejects duplicates of either.
//
// WHY Bio/Image string (not *string)?
// Both are optional profile fields. We use the empty string as the zero
// value rather than a nullable pointer — simpler to work with and safe to
// render. The database columns default to '' accordingly.
//
// PasswordHash holds the bcrypt hash, never the plaintext. It is excluded
// from JSON so a User can never leak its credential through an encoder.
type User struct {
	ID           string    `json:"id"       db:"id"`
	Email        string    `json:"email"    db:"email"`
	Username     string    `json:"username" db:"username"`
	Bio          string    `json:"bio"      db:"bio"`
	Image        string    `json:"image"    db:"image"`
	PasswordHash string    `json:"-"        db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile is the public view of a user as seen by a viewer: the profile
// fields plus whether the viewer follows them. Anonymous viewers always see
// Following=false.
type Profile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}
