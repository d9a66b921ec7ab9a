package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
	"github.com/dmitrijs2005/fleetconsole/internal/logging"
)

// Client is the auth surface of the fleet API.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
	Login(ctx context.Context, req models.LoginRequest) (string, error)
	CurrentUser(ctx context.Context) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.UserProfile, error)
	ChangePassword(ctx context.Context, req models.PasswordChange) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	AvatarUploadURL(ctx context.Context, contentType string) (*models.AvatarUpload, error)
}

// HTTPClient implements Client over the REST API rooted at baseURL.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client. Its transport is
// wrapped with credential injection.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.hc = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the API at baseURL. Each request's
// credential comes from tokens; timeout bounds a whole request (0 = none).
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		hc:      &http.Client{},
		log:     logging.Nop{},
	}
	for _, o := range opts {
		o(c)
	}

	hc := *c.hc
	hc.Transport = NewTransport(hc.Transport, tokens)
	if timeout > 0 {
		hc.Timeout = timeout
	}
	c.hc = &hc

	return c, nil
}

// Do sends body (JSON-encoded when non-nil) to path and decodes the response
// envelope. Non-2xx responses and envelopes with success=false become
// *APIError.
func (c *HTTPClient) Do(ctx context.Context, method, path string, query url.Values, body any) (*models.Envelope, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode)

	var env models.Envelope
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Message
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	if !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

// DecodeData unmarshals env.Data into dst.
func DecodeData(env *models.Envelope, dst any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: empty data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *HTTPClient) token(ctx context.Context, path string, body any) (string, error) {
	env, err := c.Do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", fmt.Errorf("%w: no token", ErrMalformedResponse)
	}
	return env.Token, nil
}

func (c *HTTPClient) user(ctx context.Context, method, path string, body any) (*models.UserProfile, error) {
	env, err := c.Do(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	var u models.UserProfile
	if err := DecodeData(env, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	return c.token(ctx, "/auth/register", req)
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	return c.token(ctx, "/auth/login", req)
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	return c.user(ctx, http.MethodGet, "/auth/me", nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.UserProfile, error) {
	return c.user(ctx, http.MethodPut, "/auth/profile", upd)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, req models.PasswordChange) error {
	_, err := c.Do(ctx, http.MethodPut, "/auth/password", nil, req)
	return err
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.Do(ctx, http.MethodPost, "/auth/forgot-password", nil, models.ForgotPasswordRequest{Email: email})
	return err
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, password string) error {
	path := "/auth/reset-password/" + url.PathEscape(token)
	_, err := c.Do(ctx, http.MethodPost, path, nil, models.ResetPasswordRequest{Password: password})
	return err
}

func (c *HTTPClient) AvatarUploadURL(ctx context.Context, contentType string) (*models.AvatarUpload, error) {
	env, err := c.Do(ctx, http.MethodPost, "/auth/avatar", nil, map[string]string{"contentType": contentType})
	if err != nil {
		return nil, err
	}
	var up models.AvatarUpload
	if err := DecodeData(env, &up); err != nil {
		return nil, err
	}
	if up.Key == "" || up.URL == "" {
		return nil, fmt.Errorf("%w: incomplete upload slot", ErrMalformedResponse)
	}
	return &up, nil
}

// HTTP returns a plain http.Client sharing the configured timeout but not
// the credential transport, for requests to third-party hosts.
func (c *HTTPClient) HTTP() *http.Client {
	return &http.Client{Timeout: c.hc.Timeout}
}

// IsCanceled reports whether err came from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
