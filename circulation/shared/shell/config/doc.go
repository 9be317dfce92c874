// Package config loads the circulation configuration and builds store connections from it.
//
// Configuration comes from an optional YAML file, overridden by CIRCULATION_* environment variables
// (CIRCULATION_POLICY_LOAN_PERIOD, CIRCULATION_STORE_ENGINE, ...), and is validated before use.
// The factory functions open PostgreSQL connections through pgx.Pool, sql.DB or sqlx.DB with the
// pool settings from the configuration.
package config
