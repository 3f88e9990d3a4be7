package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/thinkspaces/thinkspaces"
	"github.com/thinkspaces/thinkspaces/internal/config"
	"github.com/thinkspaces/thinkspaces/internal/logging"
	"github.com/thinkspaces/thinkspaces/observer"
	"github.com/thinkspaces/thinkspaces/provider/resolve"
	"github.com/thinkspaces/thinkspaces/store/postgres"
	"github.com/thinkspaces/thinkspaces/store/sqlite"
)

// app holds the wired components shared by every subcommand.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	store    thinkspaces.Store
	registry *thinkspaces.Registry
	executor *thinkspaces.Executor

	closers []func(context.Context) error
}

func loadApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	var closeStore func() error
	a.store, closeStore, err = openStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return closeStore() })

	a.registry, err = resolve.Registry(cfg.Providers, logger)
	if err != nil {
		_ = a.close(ctx)
		return nil, fmt.Errorf("registering providers: %w", err)
	}

	opts := []thinkspaces.ExecutorOption{
		thinkspaces.WithLogger(logger),
		thinkspaces.WithTimeout(cfg.Executor.Timeout),
	}
	if cfg.Observer.Enabled {
		inst, shutdown, err := observer.Init(ctx, cfg.Observer.Pricing)
		if err != nil {
			_ = a.close(ctx)
			return nil, fmt.Errorf("starting observer: %w", err)
		}
		a.closers = append(a.closers, shutdown)
		opts = append(opts,
			thinkspaces.WithTracer(observer.NewTracer()),
			thinkspaces.WithProviderWrapper(observer.Wrapper(inst)),
		)
		logger.Info("observer enabled", "service", observer.ServiceName)
	}
	a.executor = thinkspaces.NewExecutor(a.registry, thinkspaces.NewAssembler(a.store, a.store), opts...)
	return a, nil
}

// openStore opens and initializes the configured backend. The returned
// func releases the store and, for postgres, the pool it owns.
func openStore(ctx context.Context, db config.DatabaseConfig, logger *slog.Logger) (thinkspaces.Store, func() error, error) {
	var (
		store     thinkspaces.Store
		closeFunc func() error
	)
	switch db.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, db.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		store = postgres.New(pool, postgres.WithLogger(logger))
		closeFunc = func() error {
			err := store.Close()
			pool.Close()
			return err
		}
	default:
		store = sqlite.New(db.Path, sqlite.WithLogger(logger))
		closeFunc = store.Close
	}
	if err := store.Init(ctx); err != nil {
		_ = closeFunc()
		return nil, nil, fmt.Errorf("initializing %s store: %w", db.Driver, err)
	}
	logger.Info("store ready", "driver", db.Driver)
	return store, closeFunc, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}
