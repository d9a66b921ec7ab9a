package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fleetconsole/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, tokenHash string, expires time.Time) error
	Find(ctx context.Context, tokenHash string) (*models.ResetToken, error)
	DeleteForUser(ctx context.Context, userID string) error
}
