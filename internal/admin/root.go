// Package admin implements the checklists-cli command tree: operator tasks
// run directly against the server database.
package admin

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/you-kimono/checkilists/internal/dbx"
	"github.com/you-kimono/checkilists/internal/logging"
	"github.com/you-kimono/checkilists/internal/server/config"
	"github.com/you-kimono/checkilists/internal/server/credentials"
	"github.com/you-kimono/checkilists/internal/server/repositories/repomanager"
	"github.com/you-kimono/checkilists/internal/server/services"
)

type runtime struct {
	cfg *config.Config

	db         *sql.DB
	manager    repomanager.RepositoryManager
	identities *services.IdentityService
}

// Execute runs the command tree with configuration from defaults, dotenv and
// CHECKLISTS_* variables; --driver and --dsn override the database settings.
func Execute() error {
	return NewRootCmd(config.Load(nil)).Execute()
}

func NewRootCmd(cfg *config.Config) *cobra.Command {
	rt := &runtime{cfg: cfg}

	root := &cobra.Command{
		Use:          "checklists-cli",
		Short:        "Administrative tasks for the checklists server",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "database driver (pgx or sqlite)")
	root.PersistentFlags().StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "database DSN")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	root.AddCommand(migrateCmd(rt), registerCmd(rt), deleteAccountCmd(rt))
	return root
}

func (rt *runtime) open(ctx context.Context, cmd *cobra.Command) error {
	db, dialect, err := dbx.Open(ctx, rt.cfg.DatabaseDriver, rt.cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	m, err := repomanager.NewRepositoryManager(dialect)
	if err != nil {
		_ = db.Close()
		return err
	}

	logger := logging.NewJSONLogger(cmd.ErrOrStderr(), rt.cfg.LogLevel).With("module", "admin")

	rt.db = db
	rt.manager = m
	rt.identities = services.NewIdentityService(db, m, credentials.NewBcryptHasher(rt.cfg.PasswordHashCost), logger)
	return nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "db close error:", err)
		}
		rt.db = nil
	}
}
