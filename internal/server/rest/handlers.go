package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/fleetconsole/internal/common"
	"github.com/dmitrijs2005/fleetconsole/internal/server/models"
	"github.com/dmitrijs2005/fleetconsole/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Users is the account logic the handlers call into.
type Users interface {
	TokenValidator
	Register(ctx context.Context, in services.RegisterInput) (string, *models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, changes models.ProfileChanges) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// Avatars issues presigned upload slots.
type Avatars interface {
	UploadURL(ctx context.Context, userID, contentType string) (key, url string, err error)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Company  string `json:"company"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Phone   *string `json:"phone"`
	Avatar  *string `json:"avatar"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequest struct {
	Token    string `param:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type avatarRequest struct {
	ContentType string `json:"contentType" validate:"required"`
}

// profile is the public view of a user.
type profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
}

func toProfile(u *models.User) profile {
	return profile{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		Company: u.Company,
		Phone:   u.Phone,
		Avatar:  u.Avatar,
	}
}

type handler struct {
	users   Users
	avatars Avatars
}

func (h *handler) register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tok, u, err := h.users.Register(c.Request().Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Company:  req.Company,
		Phone:    req.Phone,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	return withToken(c, http.StatusCreated, tok, toProfile(u))
}

func (h *handler) login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tok, u, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errors.WithStack(err)
	}
	return withToken(c, http.StatusOK, tok, toProfile(u))
}

func (h *handler) me(c echo.Context) error {
	u, err := h.users.Me(c.Request().Context(), currentUserID(c))
	if err != nil {
		return errors.WithStack(err)
	}
	return success(c, http.StatusOK, toProfile(u), "")
}

func (h *handler) updateProfile(c echo.Context) error {
	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, err := h.users.UpdateProfile(c.Request().Context(), currentUserID(c), models.ProfileChanges{
		Name:    req.Name,
		Company: req.Company,
		Phone:   req.Phone,
		Avatar:  req.Avatar,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	return success(c, http.StatusOK, toProfile(u), "Profile updated")
}

func (h *handler) changePassword(c echo.Context) error {
	var req passwordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.users.ChangePassword(c.Request().Context(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return errors.WithStack(err)
	}
	return success(c, http.StatusOK, nil, "Password changed")
}

func (h *handler) forgotPassword(c echo.Context) error {
	var req forgotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.users.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}
	return success(c, http.StatusOK, nil, "If the address is registered, a reset link has been sent")
}

func (h *handler) resetPassword(c echo.Context) error {
	var req resetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.users.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid reset link")
		}
		return errors.WithStack(err)
	}
	return success(c, http.StatusOK, nil, "Password has been reset")
}

func (h *handler) avatarUpload(c echo.Context) error {
	var req avatarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key, url, err := h.avatars.UploadURL(c.Request().Context(), currentUserID(c), req.ContentType)
	if err != nil {
		return errors.WithStack(err)
	}
	return success(c, http.StatusOK, map[string]string{"key": key, "url": url}, "")
}
