package adapters

import (
	"context"
	"database/sql"
)

// DBAdapter defines the database operations needed by the event store.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	InTx(ctx context.Context, fn func(tx DBExecutor) error) error
}

// DBExecutor executes statements inside a transaction.
type DBExecutor interface {
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}

// stdRows wraps *sql.Rows, used by the sql.DB and sqlx.DB adapters.
type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *stdRows) Err() error {
	return s.rows.Err()
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdTx wraps *sql.Tx; *sqlx.Tx embeds it.
type stdTx struct {
	tx *sql.Tx
}

func (s stdTx) Exec(ctx context.Context, query string) (DBResult, error) {
	return s.tx.ExecContext(ctx, query)
}

// runStdTx commits when fn succeeds and rolls back otherwise.
func runStdTx(tx *sql.Tx, fn func(tx DBExecutor) error) error {
	if err := fn(stdTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
