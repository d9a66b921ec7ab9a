// Package client talks to the fleet backend.
//
// HTTPClient wraps the REST API. Every request passes through a transport
// that reads the bearer credential from a TokenSource at send time, so a
// sign-out takes effect for all requests issued after it without any shared
// header state. WithToken overrides the credential for one call, which the
// session uses to hydrate a candidate token before adopting it.
//
// StatusProbe checks liveness over the backend's gRPC health service and
// carries the same credential as per-RPC metadata.
//
// # Error Handling
//
// Failures map to ErrUnauthorized, ErrUnavailable or *APIError and can be
// matched with errors.Is and errors.As. MessageOf picks the text to show the
// user.
package client
