// Package repomanager provides a RepositoryManager for PostgreSQL and SQLite,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/you-kimono/checkilists/internal/dbx"
	"github.com/you-kimono/checkilists/internal/server/migrations"
	"github.com/you-kimono/checkilists/internal/server/repositories/accounts"
	"github.com/you-kimono/checkilists/internal/server/repositories/checklists"
	"github.com/you-kimono/checkilists/internal/server/repositories/steps"
)

// SQLRepositoryManager vends SQL-backed repositories and runs the migrations
// for its dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLRepository(db)
}

// Checklists returns a checklists.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Checklists(db dbx.DBTX) checklists.Repository {
	return checklists.NewSQLRepository(db)
}

// Steps returns a steps.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Steps(db dbx.DBTX) steps.Repository {
	return steps.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations of the manager's
// dialect and applies every pending one.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseDialect, dir, err := migrationSource(m.dialect)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}

	if err := gooseUpContext(ctx, db, dir); err != nil {
		return err
	}
	return nil
}

func migrationSource(dialect dbx.Dialect) (gooseDialect, dir string, err error) {
	switch dialect {
	case dbx.DialectPostgres:
		return "postgres", "postgres", nil
	case dbx.DialectSQLite:
		return "sqlite3", "sqlite", nil
	default:
		return "", "", fmt.Errorf("no migrations for dialect %q", dialect)
	}
}

// NewRepositoryManager constructs a RepositoryManager for the given dialect.
func NewRepositoryManager(dialect dbx.Dialect) (RepositoryManager, error) {
	if _, _, err := migrationSource(dialect); err != nil {
		return nil, err
	}
	return &SQLRepositoryManager{dialect: dialect}, nil
}
