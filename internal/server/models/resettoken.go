package models

import "time"

// ResetToken is a pending password reset. Only the SHA-256 of the token sent
// to the user is stored.
type ResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	Expires   time.Time
	CreatedAt time.Time
}
