// Package common contains shared constants and sentinel errors used across
// FleetConsole components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound
	// HTTP requests and, lower-cased, in gRPC metadata.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token in the Authorization header value.
	BearerPrefix = "Bearer "

	// TokenStorageKey is the fixed key the console persists its credential under.
	TokenStorageKey = "auth_token"
)
