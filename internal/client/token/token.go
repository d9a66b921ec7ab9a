// Package token inspects bearer credentials locally.
//
// Claims are decoded without verifying the signature. The result is an
// optimistic hint used at boot to skip a doomed hydration call; the server
// remains the only authority on whether a token is accepted.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/fleetconsole/internal/common"
)

// Claims is the subset of the credential's claims the console reads.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Decode parses tok without signature verification. A token without an
// exp claim is rejected with common.ErrInvalidToken.
func Decode(tok string) (Claims, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &c); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if c.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing exp", common.ErrInvalidToken)
	}
	return Claims{Subject: c.Subject, Email: c.Email, ExpiresAt: c.ExpiresAt.Time}, nil
}

// Check returns nil when tok decodes and has not expired at now.
func Check(tok string, now time.Time) error {
	c, err := Decode(tok)
	if err != nil {
		return err
	}
	if !now.Before(c.ExpiresAt) {
		return common.ErrTokenExpired
	}
	return nil
}

// Valid reports whether Check(tok, now) succeeds.
func Valid(tok string, now time.Time) bool {
	return Check(tok, now) == nil
}
