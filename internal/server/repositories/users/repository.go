package users

import (
	"context"

	"github.com/dmitrijs2005/fleetconsole/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, changes models.ProfileChanges) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
}
