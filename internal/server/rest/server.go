package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fleetconsole/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

const shutdownTimeout = 10 * time.Second

// Server serves the account API.
type Server struct {
	address string
	logger  logging.Logger
	echo    *echo.Echo
}

// NewServer builds the echo instance and registers routes under prefix.
func NewServer(address, prefix string, l logging.Logger, users Users, avatars Avatars) *Server {
	logger := l.With("module", "http_server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = (&errorHandler{log: logger}).Handle
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	h := &handler{users: users, avatars: avatars}

	api := e.Group(prefix)
	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)
	api.POST("/auth/forgot-password", h.forgotPassword)
	api.POST("/auth/reset-password/:token", h.resetPassword)

	auth := authenticate(users)
	api.GET("/auth/me", h.me, auth)
	api.PUT("/auth/profile", h.updateProfile, auth)
	api.PUT("/auth/password", h.changePassword, auth)
	api.POST("/auth/avatar", h.avatarUpload, auth)

	return &Server{address: address, logger: logger, echo: e}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to serve http")
	}
	return nil
}
