// Package adapters hides the differences between pgxpool.Pool, sql.DB and sqlx.DB behind DBAdapter.
//
// Reads run directly on the connection pool, appends run inside a transaction handed to a callback so the
// engine can serialize writers and check its precondition on the same connection.
package adapters
