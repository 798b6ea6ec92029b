package repomanager

import (
	"context"
	"database/sql"

	"github.com/you-kimono/checkilists/internal/dbx"
	"github.com/you-kimono/checkilists/internal/server/repositories/accounts"
	"github.com/you-kimono/checkilists/internal/server/repositories/checklists"
	"github.com/you-kimono/checkilists/internal/server/repositories/steps"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Checklists(db dbx.DBTX) checklists.Repository
	Steps(db dbx.DBTX) steps.Repository
}
