package config

import (
	"os"
	"time"
)

// TestPostgresDSNEnv names the variable that enables tests against a live PostgreSQL.
const TestPostgresDSNEnv = "CIRCULATION_TEST_PG_DSN"

// TestPostgresDSN returns the DSN of the test database, or "" when none is configured.
func TestPostgresDSN() string {
	return os.Getenv(TestPostgresDSNEnv)
}

// PostgresTestConfig is the pool configuration tests connect with.
func PostgresTestConfig() PostgresConfig {
	return PostgresConfig{
		DSN:               TestPostgresDSN(),
		Adapter:           AdapterPGX,
		MaxConns:          8,
		MinConns:          2,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: time.Minute,
		ConnectTimeout:    5 * time.Second,
	}
}
