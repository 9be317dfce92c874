// Package sqliteengine is the single-file event store for desktop deployments.
//
// It uses mattn/go-sqlite3 through sqlx and builds SQL with goqu's sqlite3 dialect.
// Payload predicates are evaluated with json_extract. Appends run in an immediate transaction
// (see Open), so checking the boundary's max sequence number and inserting can't interleave
// with another writer.
package sqliteengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // driver registration

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

const (
	engineName            = "sqlite"
	driverName            = "sqlite3"
	dialectSQLite         = "sqlite3"
	defaultEventTableName = "events"
	occurredAtLayout      = time.RFC3339Nano

	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colSequenceNumber = "sequence_number"
	jsonExtractEquals = "json_extract(payload, ?) = ?"

	logMsgQueryCompleted      = "eventstore operation: query completed"
	logMsgEventsAppended      = "eventstore operation: events appended"
	logMsgConcurrencyConflict = "eventstore operation: concurrency conflict detected"
	logMsgBuildQueryFailed    = "failed to build query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed during event append"
	logMsgRollbackFailed      = "failed to roll back transaction"
)

var ErrParsingOccurredAtFailed = errors.New("parsing occurred_at failed")

// Open opens (and creates) the database file at path with a busy timeout and immediate write locks.
func Open(path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_txlock=immediate&_journal_mode=WAL", path)

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	return db, nil
}

// EventStore is the SQLite engine.
type EventStore struct {
	db             *sqlx.DB
	eventTableName string
	instr          eventstore.Instrumentation
}

type eventRow struct {
	EventType      string `db:"event_type"`
	OccurredAt     string `db:"occurred_at"`
	Payload        string `db:"payload"`
	Metadata       string `db:"metadata"`
	SequenceNumber uint64 `db:"sequence_number"`
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the table name for the EventStore.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EventStore.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.instr.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the EventStore.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.instr.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the EventStore.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.instr.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the EventStore.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) error {
		es.instr.Tracing = collector
		return nil
	}
}

// NewEventStore creates an EventStore on an open database; the schema comes from eventstore/migrations.
func NewEventStore(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	es := &EventStore{
		db:             db,
		eventTableName: defaultEventTableName,
		instr:          eventstore.Instrumentation{Engine: engineName},
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Query returns all events matching the filter in sequence order and the highest matching sequence number.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {
	start := time.Now()
	ctx, span := es.instr.StartSpan(ctx, eventstore.SpanNameQuery, map[string]string{eventstore.AttrFilter: filter.String()})

	events, maxSequenceNumber, err := es.query(ctx, filter)

	duration := time.Since(start)
	es.instr.RecordOperation(ctx, eventstore.OperationQuery, duration, len(events), err)
	es.instr.FinishSpan(span, eventstore.StatusFor(err), duration, err)

	if err != nil {
		return nil, 0, err
	}

	es.instr.Info(ctx, logMsgQueryCompleted,
		eventstore.AttrEventCount, len(events),
		eventstore.AttrDurationMS, eventstore.ToMilliseconds(duration))

	return events, maxSequenceNumber, nil
}

func (es *EventStore) query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {
	selectStmt := goqu.Dialect(dialectSQLite).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	if whereExpr := whereClause(filter); whereExpr != nil {
		selectStmt = selectStmt.Where(whereExpr)
	}

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		es.instr.Error(ctx, logMsgBuildQueryFailed, err)
		return nil, 0, eventstore.StoreFailure(eventstore.ErrBuildingQueryFailed, err)
	}

	rows := make([]eventRow, 0)
	if err := es.db.SelectContext(ctx, &rows, sqlQuery); err != nil {
		es.instr.Error(ctx, logMsgDBQueryFailed, err, eventstore.AttrQuery, sqlQuery)
		return nil, 0, eventstore.StoreFailure(eventstore.ErrQueryingEventsFailed, err)
	}

	events := make(eventstore.StorableEvents, 0, len(rows))
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for _, row := range rows {
		occurredAt, err := time.Parse(occurredAtLayout, row.OccurredAt)
		if err != nil {
			return nil, 0, eventstore.StoreFailure(eventstore.ErrBuildingStorableEventFailed, ErrParsingOccurredAtFailed, err)
		}

		event, err := eventstore.BuildStorableEvent(row.EventType, occurredAt, []byte(row.Payload), []byte(row.Metadata))
		if err != nil {
			return nil, 0, eventstore.StoreFailure(eventstore.ErrBuildingStorableEventFailed, err)
		}

		events = append(events, event)
		maxSequenceNumber = eventstore.MaxSequenceNumberUint(row.SequenceNumber)
	}

	return events, maxSequenceNumber, nil
}

// Append inserts the events if the highest sequence number matching the filter is still
// expectedMaxSequenceNumber, otherwise it returns eventstore.ErrConcurrencyConflict.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {
	start := time.Now()
	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)
	ctx, span := es.instr.StartSpan(ctx, eventstore.SpanNameAppend, map[string]string{eventstore.AttrFilter: filter.String()})

	err := es.append(ctx, filter, expectedMaxSequenceNumber, allEvents)

	duration := time.Since(start)
	es.instr.RecordOperation(ctx, eventstore.OperationAppend, duration, len(allEvents), err)
	es.instr.FinishSpan(span, eventstore.StatusFor(err), duration, err)

	if err != nil {
		return err
	}

	es.instr.Info(ctx, logMsgEventsAppended,
		eventstore.AttrEventCount, len(allEvents),
		eventstore.AttrDurationMS, eventstore.ToMilliseconds(duration))

	return nil
}

func (es *EventStore) append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	allEvents eventstore.StorableEvents,
) error {
	maxQuery, insertQuery, err := es.buildAppendQueries(filter, allEvents)
	if err != nil {
		es.instr.Error(ctx, logMsgBuildQueryFailed, err)
		return err
	}

	tx, err := es.db.BeginTxx(ctx, nil)
	if err != nil {
		es.instr.Error(ctx, logMsgDBExecFailed, err)
		return eventstore.StoreFailure(eventstore.ErrAppendingEventFailed, err)
	}

	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, context.Canceled) {
			es.instr.Warn(ctx, logMsgRollbackFailed, eventstore.AttrError, rbErr.Error())
		}
	}

	var current uint64
	if err := tx.GetContext(ctx, &current, maxQuery); err != nil {
		rollback()
		es.instr.Error(ctx, logMsgDBQueryFailed, err, eventstore.AttrQuery, maxQuery)

		return eventstore.StoreFailure(eventstore.ErrAppendingEventFailed, err)
	}

	if eventstore.MaxSequenceNumberUint(current) != expectedMaxSequenceNumber {
		rollback()
		es.instr.Info(ctx, logMsgConcurrencyConflict,
			eventstore.AttrExpectedSeq, expectedMaxSequenceNumber,
			eventstore.AttrMaxSequence, current)

		return eventstore.ErrConcurrencyConflict
	}

	if _, err := tx.ExecContext(ctx, insertQuery); err != nil {
		rollback()
		es.instr.Error(ctx, logMsgDBExecFailed, err, eventstore.AttrQuery, insertQuery)

		return eventstore.StoreFailure(eventstore.ErrAppendingEventFailed, err)
	}

	if err := tx.Commit(); err != nil {
		es.instr.Error(ctx, logMsgDBExecFailed, err)
		return eventstore.StoreFailure(eventstore.ErrAppendingEventFailed, err)
	}

	return nil
}

func (es *EventStore) buildAppendQueries(filter eventstore.Filter, events eventstore.StorableEvents) (string, string, error) {
	builder := goqu.Dialect(dialectSQLite)

	maxStmt := builder.From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colSequenceNumber), 0))

	if whereExpr := whereClause(filter); whereExpr != nil {
		maxStmt = maxStmt.Where(whereExpr)
	}

	maxQuery, _, err := maxStmt.ToSQL()
	if err != nil {
		return "", "", eventstore.StoreFailure(eventstore.ErrBuildingQueryFailed, err)
	}

	rows := make([]any, 0, len(events))
	for _, event := range events {
		rows = append(rows, goqu.Record{
			colEventType:  event.EventType,
			colOccurredAt: event.OccurredAt.UTC().Format(occurredAtLayout),
			colPayload:    string(event.PayloadJSON),
			colMetadata:   string(event.MetadataJSON),
		})
	}

	insertQuery, _, err := builder.Insert(es.eventTableName).Rows(rows...).ToSQL()
	if err != nil {
		return "", "", eventstore.StoreFailure(eventstore.ErrBuildingQueryFailed, err)
	}

	return maxQuery, insertQuery, nil
}

func whereClause(filter eventstore.Filter) exp.Expression {
	if len(filter.Items()) == 0 {
		return nil
	}

	itemExpressions := make([]exp.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		itemExpr := make([]exp.Expression, 0, 2)

		if len(item.EventTypes()) > 0 {
			itemExpr = append(itemExpr, goqu.C(colEventType).In(item.EventTypes()))
		}

		if len(item.Predicates()) > 0 {
			predicateExpressions := make([]exp.Expression, 0, len(item.Predicates()))
			for _, predicate := range item.Predicates() {
				predicateExpressions = append(predicateExpressions, goqu.L(jsonExtractEquals, "$."+predicate.Key(), predicate.Val()))
			}

			if item.AllPredicatesMustMatch() {
				itemExpr = append(itemExpr, goqu.And(predicateExpressions...))
			} else {
				itemExpr = append(itemExpr, goqu.Or(predicateExpressions...))
			}
		}

		if len(itemExpr) == 0 {
			return nil
		}

		itemExpressions = append(itemExpressions, goqu.And(itemExpr...))
	}

	return goqu.Or(itemExpressions...)
}
