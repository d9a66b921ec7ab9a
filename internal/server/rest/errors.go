package rest

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/fleetconsole/internal/common"
	"github.com/dmitrijs2005/fleetconsole/internal/cryptox"
	"github.com/dmitrijs2005/fleetconsole/internal/logging"
	"github.com/dmitrijs2005/fleetconsole/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// errorHandler turns handler errors into envelope responses.
type errorHandler struct {
	log logging.Logger
}

// statusOf maps a service error to an HTTP status and a client-facing message.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrWrongPassword),
		errors.Is(err, services.ErrUnsupportedImage),
		errors.Is(err, cryptox.ErrPasswordTooLong):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, common.ErrResetTokenExpired):
		return http.StatusBadRequest, "reset link has expired"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	}
	return http.StatusInternalServerError, "internal server error"
}

// rootMessage returns the innermost sentinel's text.
func rootMessage(err error) string {
	for _, target := range []error{services.ErrWrongPassword, services.ErrUnsupportedImage, cryptox.ErrPasswordTooLong} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// Handle is installed as echo's HTTPErrorHandler.
func (h *errorHandler) Handle(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = fmt.Sprint(httpErr.Message)
		}
		_ = failure(c, httpErr.Code, msg)
		return
	}

	code, msg := statusOf(err)
	if code == http.StatusInternalServerError {
		h.log.Error(c.Request().Context(), "unhandled error",
			"error", err.Error(),
			"path", c.Request().URL.Path,
			"method", c.Request().Method,
		)
	}
	_ = failure(c, code, msg)
}
