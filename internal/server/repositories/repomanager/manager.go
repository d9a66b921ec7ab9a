package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fleetconsole/internal/dbx"
	"github.com/dmitrijs2005/fleetconsole/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/fleetconsole/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
}
