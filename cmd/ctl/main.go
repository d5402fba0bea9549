package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/app"
	"github.com/MrJamesThe3rd/freightdesk/internal/config"
	"github.com/MrJamesThe3rd/freightdesk/internal/database"
	"github.com/MrJamesThe3rd/freightdesk/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "freightdesk-ctl",
	Short: "Operational commands for the freightdesk back office",
	Long: `freightdesk-ctl runs maintenance tasks against the freightdesk database:
schema migrations, the overdue sweep, document regeneration, balance lookups,
offline statement imports and API token issuing.

Configuration is read from the same environment variables as the API server.`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}

	_ = e.log.Sync()
}

// setup loads config and the logger, and opens the database when withDB is
// set.
func setup(ctx context.Context, withDB bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg: cfg,
		log: logger.New(logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: "stderr",
		}),
	}

	if !withDB {
		return e, nil
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		e.close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	e.db = db

	return e, nil
}

// withApp runs fn with every service wired, closing them afterwards.
func withApp(ctx context.Context, fn func(*env, *app.App) error) error {
	e, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer e.close()

	services, err := app.New(ctx, e.cfg, e.db, e.log)
	if err != nil {
		return err
	}
	defer services.Close()

	return fn(e, services)
}
