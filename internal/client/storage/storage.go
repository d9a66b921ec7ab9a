// Package storage owns the console's local SQLite database and the
// credential kept in it between runs.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/fleetconsole/internal/filex"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DatabaseFile is the SQLite file name inside the data directory.
const DatabaseFile = "console.db"

// RunMigrations applies the embedded schema migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDir opens the database file inside dataDir, creating the directory.
func OpenDir(ctx context.Context, dataDir string) (*sql.DB, error) {
	path, err := filex.DataFile(dataDir, DatabaseFile)
	if err != nil {
		return nil, err
	}
	return Open(ctx, path)
}
