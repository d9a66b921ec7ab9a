// Package rest exposes the account API over HTTP using echo.
//
// Every response is a JSON envelope {success, message, data, token}. Routes
// other than register, login, forgot-password and reset-password require a
// bearer access token.
package rest
