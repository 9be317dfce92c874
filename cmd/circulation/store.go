package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell/config"
	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/memoryengine"
	"github.com/AntonStoeckl/library-circulation/eventstore/migrations"
	"github.com/AntonStoeckl/library-circulation/eventstore/postgresengine"
	"github.com/AntonStoeckl/library-circulation/eventstore/sqliteengine"
)

var ErrUnknownStoreEngine = errors.New("unknown store engine")

// instruments are the optional collectors handed to the store engine.
type instruments struct {
	logger  eventstore.ContextualLogger
	metrics eventstore.MetricsCollector
	tracing eventstore.TracingCollector
}

// storeHandle owns the store and the connections below it. sqlDB is nil for the memory engine.
type storeHandle struct {
	store   shell.EventStore
	sqlDB   *sql.DB
	dialect migrations.Dialect
	closers []func() error
}

func (h *storeHandle) Close() error {
	var errs []error

	for _, closeFn := range slices.Backward(h.closers) {
		errs = append(errs, closeFn())
	}

	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg config.StoreConfig, instr instruments) (*storeHandle, error) {
	switch cfg.Engine {
	case config.EngineMemory:
		return openMemoryStore(instr), nil
	case config.EngineSQLite:
		return openSQLiteStore(cfg.SQLitePath, instr)
	case config.EnginePostgres:
		return openPostgresStore(ctx, cfg.Postgres, instr)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStoreEngine, cfg.Engine)
	}
}

func openMemoryStore(instr instruments) *storeHandle {
	var opts []memoryengine.Option

	if instr.logger != nil {
		opts = append(opts, memoryengine.WithContextualLogger(instr.logger))
	}

	if instr.metrics != nil {
		opts = append(opts, memoryengine.WithMetrics(instr.metrics))
	}

	if instr.tracing != nil {
		opts = append(opts, memoryengine.WithTracing(instr.tracing))
	}

	return &storeHandle{store: memoryengine.NewEventStore(opts...)}
}

func openSQLiteStore(path string, instr instruments) (*storeHandle, error) {
	db, err := sqliteengine.Open(path)
	if err != nil {
		return nil, err
	}

	handle := &storeHandle{sqlDB: db.DB, dialect: migrations.DialectSQLite, closers: []func() error{db.Close}}

	var opts []sqliteengine.Option

	if instr.logger != nil {
		opts = append(opts, sqliteengine.WithContextualLogger(instr.logger))
	}

	if instr.metrics != nil {
		opts = append(opts, sqliteengine.WithMetrics(instr.metrics))
	}

	if instr.tracing != nil {
		opts = append(opts, sqliteengine.WithTracing(instr.tracing))
	}

	store, err := sqliteengine.NewEventStore(db, opts...)
	if err != nil {
		return nil, errors.Join(err, handle.Close())
	}

	handle.store = store

	return handle, nil
}

func openPostgresStore(ctx context.Context, cfg config.PostgresConfig, instr instruments) (*storeHandle, error) {
	var opts []postgresengine.Option

	if instr.logger != nil {
		opts = append(opts, postgresengine.WithContextualLogger(instr.logger))
	}

	if instr.metrics != nil {
		opts = append(opts, postgresengine.WithMetrics(instr.metrics))
	}

	if instr.tracing != nil {
		opts = append(opts, postgresengine.WithTracing(instr.tracing))
	}

	handle := &storeHandle{dialect: migrations.DialectPostgres}

	var err error

	switch cfg.Adapter {
	case config.AdapterPGX:
		pool, poolErr := config.PostgresPGXPool(ctx, cfg)
		if poolErr != nil {
			return nil, poolErr
		}

		// goose needs database/sql; this one shares the pool's connections.
		handle.sqlDB = stdlib.OpenDBFromPool(pool)
		handle.closers = append(handle.closers, func() error { pool.Close(); return nil }, handle.sqlDB.Close)
		handle.store, err = postgresengine.NewEventStoreFromPGXPool(pool, opts...)

	case config.AdapterSQL:
		db, dbErr := config.PostgresSQLDB(ctx, cfg)
		if dbErr != nil {
			return nil, dbErr
		}

		handle.sqlDB = db
		handle.closers = append(handle.closers, db.Close)
		handle.store, err = postgresengine.NewEventStoreFromSQLDB(db, opts...)

	case config.AdapterSQLX:
		db, dbErr := config.PostgresSQLXDB(ctx, cfg)
		if dbErr != nil {
			return nil, dbErr
		}

		handle.sqlDB = db.DB
		handle.closers = append(handle.closers, db.Close)
		handle.store, err = postgresengine.NewEventStoreFromSQLX(db, opts...)
	}

	if err != nil {
		return nil, errors.Join(err, handle.Close())
	}

	return handle, nil
}
