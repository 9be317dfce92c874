// Package migrations applies the events table schema with goose.
// The SQL files are embedded, one directory per dialect.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Dialect selects the migration set.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

var (
	ErrUnknownDialect  = errors.New("unknown migration dialect")
	ErrMigrationFailed = errors.New("migration failed")
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

func dirFor(dialect Dialect) (string, error) {
	switch dialect {
	case DialectPostgres:
		return "postgres", nil
	case DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
}

// Up applies all pending migrations. logger may be nil.
func Up(db *sql.DB, dialect Dialect, logger eventstore.Logger) error {
	return run(db, dialect, logger, func(dir string) error {
		return goose.Up(db, dir)
	})
}

// Down rolls back the most recent migration.
func Down(db *sql.DB, dialect Dialect, logger eventstore.Logger) error {
	return run(db, dialect, logger, func(dir string) error {
		return goose.Down(db, dir)
	})
}

// Version returns the current schema version.
func Version(db *sql.DB, dialect Dialect) (int64, error) {
	var version int64

	err := run(db, dialect, nil, func(string) error {
		v, err := goose.GetDBVersion(db)
		version = v

		return err
	})

	return version, err
}

func run(db *sql.DB, dialect Dialect, logger eventstore.Logger, fn func(dir string) error) error {
	dir, err := dirFor(dialect)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)

	goose.SetLogger(gooseLogger{logger: logger})

	if err := goose.SetDialect(string(dialect)); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	if err := fn(dir); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
}

// gooseLogger routes goose output to the eventstore Logger.
type gooseLogger struct {
	logger eventstore.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
	}
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	}
}
