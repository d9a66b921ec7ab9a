// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account of the fleet console. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Role         string
	Company      string
	Phone        string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileChanges lists the profile fields to overwrite; nil means unchanged.
type ProfileChanges struct {
	Name    *string
	Company *string
	Phone   *string
	Avatar  *string
}
