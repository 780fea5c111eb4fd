package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"ppr/internal/config"
	"ppr/internal/logging"
	"ppr/internal/metrics"
	"ppr/internal/service"
	"ppr/internal/store"
	"ppr/internal/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// app holds everything a subcommand needs once config is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	pool    *pgxpool.Pool
	store   *store.Store
	metrics *metrics.Metrics
	tracing *tracing.Provider
	service *service.Service
	closers []io.Closer
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, io.Closer, error) {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closer, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}
	slog.SetDefault(logger)
	return cfg, logger, closer, nil
}

// newApp loads config, connects to the database and builds the service.
// Migrations are applied first unless skipMigrations is set.
func newApp(ctx context.Context, cmd *cobra.Command, skipMigrations bool) (*app, error) {
	cfg, logger, closer, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{closer}}

	if !skipMigrations {
		if err := a.migrate(); err != nil {
			a.Close()
			return nil, err
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect db: %w", err)
	}
	a.pool = pool
	a.store = store.New(pool)

	tp, err := tracing.New(tracing.Config{Enabled: cfg.Tracing.Enabled, CollectorEndpoint: cfg.Tracing.CollectorEndpoint})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("tracing: %w", err)
	}
	a.tracing = tp
	a.metrics = metrics.New()
	a.service = service.New(a.store,
		service.WithLogger(logger),
		service.WithMetrics(a.metrics),
		service.WithTracer(tp.Tracer()),
		service.WithConcurrency(cfg.Recompute.Concurrency),
	)
	return a, nil
}

func (a *app) migrate() error {
	dir := a.cfg.Database.MigrationsDir
	if dir == "" {
		resolved, err := store.MigrationsDir()
		if err != nil {
			return fmt.Errorf("migrations dir: %w", err)
		}
		dir = resolved
	}
	if err := store.Migrate(a.cfg.Database.URL, dir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (a *app) Close() {
	if a.tracing != nil {
		if err := a.tracing.Shutdown(context.Background()); err != nil {
			a.logger.Warn("tracing shutdown", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	for _, closer := range a.closers {
		_ = closer.Close()
	}
}
