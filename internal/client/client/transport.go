package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/fleetconsole/internal/common"
)

// TokenSource returns the credential to attach, or "" for none.
type TokenSource func() string

type tokenOverrideKey struct{}

// WithToken makes requests issued with ctx carry token instead of the one
// from the TokenSource. An empty token sends the request without a
// credential.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenOverrideKey{}, token)
}

// bearerTransport sets the Authorization header on each outgoing request
// from the credential current at send time.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, overridden := req.Context().Value(tokenOverrideKey{}).(string)
	if !overridden && t.tokens != nil {
		token = t.tokens()
	}

	if token == "" && req.Header.Get(common.AuthorizationHeaderName) == "" {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	if token == "" {
		r.Header.Del(common.AuthorizationHeaderName)
	} else {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))
	}
	return t.base.RoundTrip(r)
}

// NewTransport wraps base (http.DefaultTransport when nil) with credential
// injection from tokens.
func NewTransport(base http.RoundTripper, tokens TokenSource) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &bearerTransport{base: base, tokens: tokens}
}
