package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/circulation/engine"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell/config"
	"github.com/AntonStoeckl/library-circulation/eventstore/migrations"
	"github.com/AntonStoeckl/library-circulation/eventstore/oteladapters"
)

const (
	instrumentationScope = "library-circulation"
	shutdownTimeout      = 5 * time.Second

	logMsgStoreOpened = "store opened"
	logMsgMigrated    = "schema migrated"
)

// app is what a subcommand runs against. It holds the engine by its capability interfaces only.
type app struct {
	configPath string

	cfg         config.Config
	logger      *slog.Logger
	circulation engine.Circulation
	catalog     engine.CatalogAdmin
	members     engine.MembershipAdmin
	queries     engine.Queries
	engine      *engine.Engine // sweep target

	store     *storeHandle
	providers *oteladapters.Providers
}

// run opens everything a subcommand needs and releases it when fn returns.
func (a *app) run(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.open(cmd.Context(), cmd.ErrOrStderr()); err != nil {
			return err
		}

		defer func() {
			err = errors.Join(err, a.close())
		}()

		return fn(cmd.Context(), cmd, args)
	}
}

func (a *app) open(ctx context.Context, logOutput io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(cfg.Log, logOutput)

	policy, err := cfg.Policy.CorePolicy()
	if err != nil {
		return err
	}

	instr := instruments{logger: oteladapters.NewSlogBridgeLoggerWithHandler(a.logger.Handler())}

	if cfg.Observability.Enabled {
		if a.providers, err = setupTelemetry(ctx, cfg.Observability, logOutput); err != nil {
			return err
		}

		bridge := a.providers.Logger(instrumentationScope)
		a.logger = bridge.Slog()
		instr.logger = bridge
		instr.metrics, instr.tracing = a.providers.Collectors(instrumentationScope)
	}

	engineOpts := []engine.Option{engine.WithContextualLogger(instr.logger)}
	if instr.metrics != nil {
		engineOpts = append(engineOpts, engine.WithMetrics(instr.metrics), engine.WithTracing(instr.tracing))
	}

	a.store, err = openStore(ctx, cfg.Store, instr)
	if err != nil {
		return errors.Join(err, a.close())
	}

	a.logger.Debug(logMsgStoreOpened, "engine", cfg.Store.Engine)

	if a.store.sqlDB != nil {
		if err := migrations.Up(a.store.sqlDB, a.store.dialect, a.logger); err != nil {
			return errors.Join(err, a.close())
		}

		a.logger.Debug(logMsgMigrated, "dialect", string(a.store.dialect))
	}

	eng, err := engine.New(a.store.store, policy, engineOpts...)
	if err != nil {
		return errors.Join(err, a.close())
	}

	a.engine = eng
	a.circulation, a.catalog, a.members, a.queries = eng, eng, eng, eng

	return nil
}

func (a *app) close() error {
	var errs []error

	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}

	if a.providers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		errs = append(errs, a.providers.Shutdown(ctx))
		a.providers = nil
	}

	return errors.Join(errs...)
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}
