package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusBadGateway, ErrUnavailable},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusGatewayTimeout, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &APIError{Status: tt.status})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	plain := &APIError{Status: http.StatusConflict, Message: "Email already registered"}
	assert.NotErrorIs(t, plain, ErrUnauthorized)
	assert.NotErrorIs(t, plain, ErrUnavailable)
	assert.Equal(t, "api error: 409 Email already registered", plain.Error())
	assert.Equal(t, "api error: 500 Internal Server Error", (&APIError{Status: 500}).Error())
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Invalid credentials", MessageOf(&APIError{Status: 401, Message: "Invalid credentials"}, "fallback"))
	assert.Equal(t, "fallback", MessageOf(&APIError{Status: 500}, "fallback"))
	assert.Equal(t, "fallback", MessageOf(fmt.Errorf("%w: dial tcp", ErrUnavailable), "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", MessageOf(nil, "fallback"))
}
