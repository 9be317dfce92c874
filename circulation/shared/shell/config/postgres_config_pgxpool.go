package config

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOpeningDatabaseFailed = errors.New("opening database failed")

// PostgresPGXPoolConfig creates a pgxpool.Config from the store configuration.
func PostgresPGXPoolConfig(cfg PostgresConfig) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	dbConfig.MaxConns = cfg.MaxConns
	dbConfig.MinConns = cfg.MinConns
	dbConfig.MaxConnLifetime = cfg.MaxConnLifetime
	dbConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	dbConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	return dbConfig, nil
}

// PostgresPGXPool opens a pgx pool and checks the connection.
func PostgresPGXPool(ctx context.Context, cfg PostgresConfig) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	return pool, nil
}
