package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/app"
	"github.com/MrJamesThe3rd/freightdesk/internal/config"
	"github.com/MrJamesThe3rd/freightdesk/internal/database"
	apihttp "github.com/MrJamesThe3rd/freightdesk/internal/http"
	bookingHandler "github.com/MrJamesThe3rd/freightdesk/internal/http/booking"
	dealHandler "github.com/MrJamesThe3rd/freightdesk/internal/http/deal"
	exportHandler "github.com/MrJamesThe3rd/freightdesk/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/freightdesk/internal/http/importcsv"
	invoiceHandler "github.com/MrJamesThe3rd/freightdesk/internal/http/invoice"
	matchingHandler "github.com/MrJamesThe3rd/freightdesk/internal/http/matching"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/middleware"
	partyHandler "github.com/MrJamesThe3rd/freightdesk/internal/http/party"
	"github.com/MrJamesThe3rd/freightdesk/internal/idempotency"
	"github.com/MrJamesThe3rd/freightdesk/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		m, err := database.NewMigrator(db, log.Named("migrate"))
		if err != nil {
			return err
		}

		if err := m.Up(); err != nil {
			return err
		}
	}

	services, err := app.New(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer services.Close()

	idem, err := idempotencyStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	router := apihttp.New(apihttp.Handlers{
		Bookings: bookingHandler.NewHandler(services.Bookings, services.Invoices, services.Deals),
		Invoices: invoiceHandler.NewHandler(services.Invoices, services.Payments),
		Deals:    dealHandler.NewHandler(services.Deals),
		Parties:  partyHandler.NewHandler(services.Parties, services.Balances),
		Import:   importHandler.NewHandler(services.Importer),
		Matching: matchingHandler.NewHandler(services.Matching),
		Export:   exportHandler.NewHandler(services.Export, log.Named("export")),
	}, apihttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Auth:           middleware.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.Disabled, log.Named("auth")),
		Idempotency:    middleware.Idempotency(idem, cfg.Redis.IdempotencyTTL, log.Named("idempotency")),
		Log:            log.Named("http"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           http.TimeoutHandler(router, cfg.Server.Timeout, `{"code":"timeout","message":"request timed out","retryable":true}`),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

// idempotencyStore uses Redis when configured so keys are shared across
// replicas, and process memory otherwise.
func idempotencyStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (idempotency.Store, error) {
	if cfg.Redis.Addr == "" {
		log.Info("idempotency keys kept in memory")
		return idempotency.NewMemory(), nil
	}

	client, err := idempotency.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	return idempotency.NewRedis(client), nil
}
