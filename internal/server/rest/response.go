package rest

import (
	"github.com/labstack/echo/v4"
)

// Response is the envelope written for every request.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

func success(c echo.Context, code int, data any, message string) error {
	return c.JSON(code, Response{Success: true, Message: message, Data: data})
}

func withToken(c echo.Context, code int, token string, data any) error {
	return c.JSON(code, Response{Success: true, Data: data, Token: token})
}

func failure(c echo.Context, code int, message string) error {
	return c.JSON(code, Response{Success: false, Message: message})
}
