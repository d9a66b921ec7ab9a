// Package services contains server-side business logic. This file implements
// UserService, which handles accounts, sign-in and password resets.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fleetconsole/internal/common"
	"github.com/dmitrijs2005/fleetconsole/internal/cryptox"
	"github.com/dmitrijs2005/fleetconsole/internal/dbx"
	"github.com/dmitrijs2005/fleetconsole/internal/logging"
	"github.com/dmitrijs2005/fleetconsole/internal/server/auth"
	"github.com/dmitrijs2005/fleetconsole/internal/server/config"
	"github.com/dmitrijs2005/fleetconsole/internal/server/models"
	"github.com/dmitrijs2005/fleetconsole/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// dummyHash is compared against when the email is unknown so that a failed
// login takes as long as a wrong password.
var dummyHash, _ = cryptox.HashPassword([]byte("fleet-console-dummy-password"))

// RegisterInput is a new account's details.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Company  string
	Phone    string
}

// UserService provides account operations:
//   - Register and Login: create or verify an account and mint an access token
//   - Me and UpdateProfile: read and edit the signed-in user
//   - ChangePassword, ForgotPassword and ResetPassword: password lifecycle
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	mailer                      ResetMailer
	log                         logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	resetTokenValidityDuration  time.Duration
	now                         func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, mailer ResetMailer, log logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		mailer:                      mailer,
		log:                         log,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		resetTokenValidityDuration:  cfg.ResetTokenValidityDuration,
		now:                         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns an access token for it. A taken
// email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, *models.User, error) {
	hash, err := cryptox.HashPassword([]byte(in.Password))
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
		Company:      in.Company,
		Phone:        in.Phone,
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("error creating user: %w", err)
	}

	tok, err := s.issue(u)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Login verifies the credentials and returns a new access token. Unknown
// emails and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = cryptox.CheckPassword(dummyHash, []byte(password))
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, fmt.Errorf("error searching user: %w", err)
	}

	if err := cryptox.CheckPassword(user.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("check password: %w", err)
	}

	tok, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return tok, user, nil
}

// Me returns the user with the given ID.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// UpdateProfile applies changes and returns the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, changes models.ProfileChanges) (*models.User, error) {
	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		changes.Name = &name
	}
	u, err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, changes)
	if err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error getting user: %w", err)
	}

	if err := cryptox.CheckPassword(user.PasswordHash, []byte(current)); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return ErrWrongPassword
		}
		return fmt.Errorf("check password: %w", err)
	}

	hash, err := cryptox.HashPassword([]byte(next))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// ForgotPassword issues a reset token for email and hands it to the mailer.
// Unknown emails succeed silently so the endpoint does not reveal accounts.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("error searching user: %w", err)
	}

	token := uuid.NewString()
	expires := s.now().Add(s.resetTokenValidityDuration)
	if err := s.repomanager.ResetTokens(s.db).Create(ctx, user.ID, cryptox.HashToken(token), expires); err != nil {
		return fmt.Errorf("error creating reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user, token); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword sets a new password using a reset token. Unknown tokens
// yield common.ErrorNotFound and expired ones common.ErrResetTokenExpired.
// All of the user's pending resets are consumed.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	rt, err := s.repomanager.ResetTokens(s.db).Find(ctx, cryptox.HashToken(token))
	if err != nil {
		return fmt.Errorf("error searching reset token: %w", err)
	}
	if !s.now().Before(rt.Expires) {
		return common.ErrResetTokenExpired
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, rt.UserID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		if err := s.repomanager.ResetTokens(tx).DeleteForUser(ctx, rt.UserID); err != nil {
			return fmt.Errorf("error deleting reset tokens: %w", err)
		}
		return nil
	})
}

// ValidateToken returns the user ID carried by an access token.
func (s *UserService) ValidateToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *UserService) issue(u *models.User) (string, error) {
	tok, err := auth.GenerateToken(u.ID, u.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}
	return tok, nil
}
