package postgresengine_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell/config"
	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/migrations"
	"github.com/AntonStoeckl/library-circulation/eventstore/postgresengine"
)

type engineFactory func(t *testing.T, cfg config.PostgresConfig) *postgresengine.EventStore

func engineFactories() map[string]engineFactory {
	return map[string]engineFactory{
		"pgx.pool": func(t *testing.T, cfg config.PostgresConfig) *postgresengine.EventStore {
			t.Helper()

			pool, err := config.PostgresPGXPool(context.Background(), cfg)
			require.NoError(t, err)
			t.Cleanup(pool.Close)

			es, err := postgresengine.NewEventStoreFromPGXPool(pool)
			require.NoError(t, err)

			return es
		},
		"sql.DB": func(t *testing.T, cfg config.PostgresConfig) *postgresengine.EventStore {
			t.Helper()

			db, err := config.PostgresSQLDB(context.Background(), cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })

			es, err := postgresengine.NewEventStoreFromSQLDB(db)
			require.NoError(t, err)

			return es
		},
		"sqlx.DB": func(t *testing.T, cfg config.PostgresConfig) *postgresengine.EventStore {
			t.Helper()

			db, err := config.PostgresSQLXDB(context.Background(), cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })

			es, err := postgresengine.NewEventStoreFromSQLX(db)
			require.NoError(t, err)

			return es
		},
	}
}

func givenCleanDatabase(t *testing.T) config.PostgresConfig {
	t.Helper()

	cfg := config.PostgresTestConfig()
	if cfg.DSN == "" {
		t.Skipf("%s not set", config.TestPostgresDSNEnv)
	}

	db, err := config.PostgresSQLDB(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, migrations.Up(db, migrations.DialectPostgres, nil))

	_, err = db.Exec(`TRUNCATE TABLE events RESTART IDENTITY`)
	require.NoError(t, err)

	return cfg
}

func givenEvent(t *testing.T, eventType, payload string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(payload))
	require.NoError(t, err)

	return event
}

func titleFilter(titleID string) eventstore.Filter {
	return eventstore.NewFilter(eventstore.Types().WhereAny(eventstore.P("TitleID", titleID)))
}

func Test_EventStore_QueryAndConditionalAppend(t *testing.T) {
	for name, factory := range engineFactories() {
		t.Run(name, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			es := factory(t, givenCleanDatabase(t))
			filter := titleFilter("t-1")

			_, maxSeq, err := es.Query(ctx, filter)
			require.NoError(t, err)

			require.NoError(t, es.Append(ctx, filter, maxSeq,
				givenEvent(t, "TitleCatalogued", `{"TitleID":"t-1"}`),
				givenEvent(t, "CopyAddedToTitle", `{"TitleID":"t-1","CopyID":"c-1"}`),
			))

			// act
			staleErr := es.Append(ctx, filter, maxSeq, givenEvent(t, "CopyAddedToTitle", `{"TitleID":"t-1","CopyID":"c-2"}`))
			events, newMaxSeq, queryErr := es.Query(ctx, filter)

			// assert
			assert.ErrorIs(t, staleErr, eventstore.ErrConcurrencyConflict)
			require.NoError(t, queryErr)
			require.Len(t, events, 2)
			assert.Equal(t, "TitleCatalogued", events[0].EventType)
			assert.Equal(t, eventstore.MaxSequenceNumberUint(2), newMaxSeq)
		})
	}
}

func Test_EventStore_Append_ExactlyOneConcurrentWriterWins(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := engineFactories()["pgx.pool"](t, givenCleanDatabase(t))
	filter := titleFilter("t-1")
	event := givenEvent(t, "LoanOpened", `{"TitleID":"t-1"}`)

	var wins, conflicts atomic.Int32

	var wg sync.WaitGroup

	// act
	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if appendErr := es.Append(ctx, filter, 0, event); appendErr == nil {
				wins.Add(1)
			} else if eventstore.StatusFor(appendErr) == eventstore.StatusConflict {
				conflicts.Add(1)
			}
		}()
	}

	wg.Wait()

	// assert
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(7), conflicts.Load())
}
