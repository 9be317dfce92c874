// Package postgresengine provides the PostgreSQL implementation of the event store.
//
// The engine works with pgxpool.Pool, database/sql (lib/pq) and sqlx.DB through internal adapters.
// SQL is generated with goqu. Payload predicates are evaluated with jsonb containment (payload @> '{"Key":"Val"}').
//
// Appends run in a transaction that first takes pg_advisory_xact_lock on the table name and then executes
// a conditional INSERT ... SELECT guarded by the boundary's max sequence number. When fewer rows than events
// were inserted, Append returns eventstore.ErrConcurrencyConflict.
//
// Usage:
//
//	pool, _ := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolConfig(dsn))
//	store, _ := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithLogger(slog.Default()))
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
//
// The schema lives in eventstore/migrations.
package postgresengine
