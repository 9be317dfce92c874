package sqliteengine_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/migrations"
	"github.com/AntonStoeckl/library-circulation/eventstore/sqliteengine"
	"github.com/AntonStoeckl/library-circulation/testutil/observability/testdoubles"
)

func givenMigratedDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqliteengine.Open(filepath.Join(t.TempDir(), "circulation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(db.DB, migrations.DialectSQLite, nil))

	return db
}

func givenEventStore(t *testing.T, options ...sqliteengine.Option) *sqliteengine.EventStore {
	t.Helper()

	es, err := sqliteengine.NewEventStore(givenMigratedDB(t), options...)
	require.NoError(t, err)

	return es
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

func Test_NewEventStore_FailsWithoutConnection(t *testing.T) {
	// act
	_, err := sqliteengine.NewEventStore(nil)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)
}

func Test_NewEventStore_RejectsEmptyTableName(t *testing.T) {
	// act
	_, err := sqliteengine.NewEventStore(givenMigratedDB(t), sqliteengine.WithTableName(""))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrEmptyEventsTableName)
}

func Test_EventStore_QueryReturnsMatchingEventsInOrder(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := givenEventStore(t)

	require.NoError(t, es.Append(ctx, titleFilter("t-1"), 0,
		givenEvent(t, "TitleCatalogued", `{"TitleID":"t-1"}`),
		givenEvent(t, "CopyAddedToTitle", `{"TitleID":"t-1","CopyID":"c-1"}`),
	))
	require.NoError(t, es.Append(ctx, titleFilter("t-2"), 0, givenEvent(t, "TitleCatalogued", `{"TitleID":"t-2"}`)))

	// act
	events, maxSeq, err := es.Query(ctx, titleFilter("t-1"))

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "TitleCatalogued", events[0].EventType)
	assert.Equal(t, "CopyAddedToTitle", events[1].EventType)
	assert.JSONEq(t, `{"TitleID":"t-1","CopyID":"c-1"}`, string(events[1].PayloadJSON))
	assert.Equal(t, eventstore.MaxSequenceNumberUint(2), maxSeq)
}

func Test_EventStore_Query_PreservesOccurredAt(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := givenEventStore(t)
	occurredAt := time.Date(2025, 4, 1, 9, 30, 0, 123456000, time.UTC)

	event, err := eventstore.BuildStorableEventWithEmptyMetadata("TitleCatalogued", occurredAt, []byte(`{"TitleID":"t-1"}`))
	require.NoError(t, err)
	require.NoError(t, es.Append(ctx, titleFilter("t-1"), 0, event))

	// act
	events, _, err := es.Query(ctx, titleFilter("t-1"))

	// assert
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, occurredAt.Equal(events[0].OccurredAt))
}

func Test_EventStore_Query_CombinesItemsWithOrAndPredicatesWithAll(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := givenEventStore(t)

	require.NoError(t, es.Append(ctx, eventstore.NewFilter(), 0,
		givenEvent(t, "LoanOpened", `{"TitleID":"t-1","MemberID":"m-1"}`),
		givenEvent(t, "LoanOpened", `{"TitleID":"t-1","MemberID":"m-2"}`),
		givenEvent(t, "MemberRegistered", `{"MemberID":"m-3"}`),
	))

	filter := eventstore.NewFilter(
		eventstore.Types("LoanOpened").WhereAll(eventstore.P("TitleID", "t-1"), eventstore.P("MemberID", "m-2")),
		eventstore.Types("MemberRegistered"),
	)

	// act
	events, maxSeq, err := es.Query(ctx, filter)

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.JSONEq(t, `{"TitleID":"t-1","MemberID":"m-2"}`, string(events[0].PayloadJSON))
	assert.Equal(t, "MemberRegistered", events[1].EventType)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(3), maxSeq)
}

func Test_EventStore_Append_ConflictsWhenBoundaryChanged(t *testing.T) {
	// arrange
	ctx := context.Background()
	logger := testdoubles.NewLoggerSpy()
	es := givenEventStore(t, sqliteengine.WithLogger(logger))
	filter := titleFilter("t-1")

	_, maxSeq, err := es.Query(ctx, filter)
	require.NoError(t, err)
	require.NoError(t, es.Append(ctx, filter, maxSeq, givenEvent(t, "TitleCatalogued", `{"TitleID":"t-1"}`)))

	// act
	err = es.Append(ctx, filter, maxSeq, givenEvent(t, "CopyAddedToTitle", `{"TitleID":"t-1","CopyID":"c-1"}`))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.True(t, logger.HasMessage("info", "eventstore operation: concurrency conflict detected"))

	events, _, err := es.Query(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, events, 1, "nothing may be appended on conflict")
}

func Test_EventStore_Append_IgnoresChangesOutsideTheBoundary(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := givenEventStore(t)

	_, maxSeq, err := es.Query(ctx, titleFilter("t-1"))
	require.NoError(t, err)
	require.NoError(t, es.Append(ctx, titleFilter("t-2"), 0, givenEvent(t, "TitleCatalogued", `{"TitleID":"t-2"}`)))

	// act
	err = es.Append(ctx, titleFilter("t-1"), maxSeq, givenEvent(t, "TitleCatalogued", `{"TitleID":"t-1"}`))

	// assert
	assert.NoError(t, err)
}

func Test_EventStore_Append_ExactlyOneConcurrentWriterWins(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := givenEventStore(t)
	filter := titleFilter("t-1")
	event := givenEvent(t, "LoanOpened", `{"TitleID":"t-1"}`)

	var wins, conflicts, others atomic.Int32

	var wg sync.WaitGroup

	// act
	for i := 0; i < 4; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			switch appendErr := es.Append(ctx, filter, 0, event); {
			case appendErr == nil:
				wins.Add(1)
			case eventstore.StatusFor(appendErr) == eventstore.StatusConflict:
				conflicts.Add(1)
			default:
				others.Add(1)
			}
		}()
	}

	wg.Wait()

	// assert
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(3), conflicts.Load())
	assert.Zero(t, others.Load())
}

func Test_EventStore_RecordsMetrics(t *testing.T) {
	// arrange
	ctx := context.Background()
	metrics := testdoubles.NewMetricsCollectorSpy()
	es := givenEventStore(t, sqliteengine.WithMetrics(metrics))

	// act
	require.NoError(t, es.Append(ctx, titleFilter("t-1"), 0, givenEvent(t, "TitleCatalogued", `{"TitleID":"t-1"}`)))
	_, _, err := es.Query(ctx, titleFilter("t-1"))

	// assert
	require.NoError(t, err)
	assert.True(t, metrics.HasRecord(eventstore.MetricAppendDuration, map[string]string{
		eventstore.AttrEngine: "sqlite",
		eventstore.AttrStatus: eventstore.StatusSuccess,
	}))
	assert.True(t, metrics.HasRecord(eventstore.MetricQueryDuration, map[string]string{
		eventstore.AttrEngine: "sqlite",
	}))
}
