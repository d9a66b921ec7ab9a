package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/fleetconsole/internal/common"
	"github.com/dmitrijs2005/fleetconsole/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const userIDKey = "userID"

// TokenValidator resolves an access token to a user ID.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// authenticate rejects requests without a valid bearer token and stores the
// caller's ID in the echo context.
func authenticate(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(common.AuthorizationHeaderName)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header required")
			}
			if !strings.HasPrefix(header, common.BearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			userID, err := tokens.ValidateToken(strings.TrimPrefix(header, common.BearerPrefix))
			if err != nil {
				return errors.WithStack(err)
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

// requestLogger logs one line per request at debug level.
func requestLogger(log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.Debug(c.Request().Context(), "request",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"duration", time.Since(start),
			)
			return nil
		}
	}
}
