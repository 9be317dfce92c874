package config

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// PostgresSQLXDB opens a configured *sqlx.DB on top of PostgresSQLDB.
func PostgresSQLXDB(ctx context.Context, cfg PostgresConfig) (*sqlx.DB, error) {
	db, err := PostgresSQLDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return sqlx.NewDb(db, "postgres"), nil
}
