package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/postgresengine/internal/adapters"
)

const (
	engineName                     = "postgres"
	defaultEventTableName          = "events"
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgQueryCompleted           = "eventstore operation: query completed"
	logMsgEventsAppended           = "eventstore operation: events appended"
	logMsgConcurrencyConflict      = "eventstore operation: concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logAttrEventType               = "event_type"
	logAttrRowsAffected            = "rows_affected"
	colEventType                   = "event_type"
	colOccurredAt                  = "occurred_at"
	colPayload                     = "payload"
	colMetadata                    = "metadata"
	colSequenceNumber              = "sequence_number"
	cteContext                     = "context"
	cteVals                        = "vals"
	dialectPostgres                = "postgres"
	aliasMaxSeq                    = "max_seq"
	castText                       = "?::text"
	castTimestamp                  = "?::timestamp with time zone"
	castJsonb                      = "?::jsonb"
	containsJsonb                  = "payload @> ?::jsonb"
)

// EventStore is the PostgreSQL engine. All appends to one events table are serialized with a
// transaction-scoped advisory lock, so the max-sequence precondition and the insert can't interleave
// with a concurrent append.
type EventStore struct {
	db             adapters.DBAdapter
	eventTableName string
	instr          eventstore.Instrumentation
}

type queryResultRow struct {
	eventType      string
	payload        []byte
	metadata       []byte
	occurredAt     time.Time
	sequenceNumber eventstore.MaxSequenceNumberUint
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB (lib/pq) with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (*EventStore, error) {
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

// Query retrieves all events matching the filter in sequence order
// together with the highest sequence number among them.
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
	sqlQuery, err := es.buildSelectQuery(filter)
	if err != nil {
		es.instr.Error(ctx, logMsgBuildSelectQueryFailed, err)
		return nil, 0, err
	}

	queryStart := time.Now()
	rows, err := es.db.Query(ctx, sqlQuery)
	es.instr.Debug(ctx, logMsgSQLExecuted+eventstore.OperationQuery,
		eventstore.AttrDurationMS, eventstore.ToMilliseconds(time.Since(queryStart)),
		eventstore.AttrQuery, sqlQuery)

	if err != nil {
		es.instr.Error(ctx, logMsgDBQueryFailed, err, eventstore.AttrQuery, sqlQuery)
		return nil, 0, eventstore.StoreFailure(eventstore.ErrQueryingEventsFailed, err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			es.instr.Warn(ctx, logMsgCloseRowsFailed, eventstore.AttrError, closeErr.Error())
		}
	}()

	return es.scanRows(ctx, rows)
}

func (es *EventStore) scanRows(ctx context.Context, rows adapters.DBRows) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {
	row := queryResultRow{}
	events := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		if err := rows.Scan(&row.eventType, &row.occurredAt, &row.payload, &row.metadata, &row.sequenceNumber); err != nil {
			es.instr.Error(ctx, logMsgScanRowFailed, err)
			return nil, 0, eventstore.StoreFailure(eventstore.ErrScanningDBRowFailed, err)
		}

		event, err := eventstore.BuildStorableEvent(row.eventType, row.occurredAt, row.payload, row.metadata)
		if err != nil {
			es.instr.Error(ctx, logMsgBuildStorableEventFailed, err, logAttrEventType, row.eventType)
			return nil, 0, eventstore.StoreFailure(eventstore.ErrBuildingStorableEventFailed, err)
		}

		events = append(events, event)
		maxSequenceNumber = row.sequenceNumber
	}

	if err := rows.Err(); err != nil {
		es.instr.Error(ctx, logMsgScanRowFailed, err)
		return nil, 0, eventstore.StoreFailure(eventstore.ErrScanningDBRowFailed, err)
	}

	return events, maxSequenceNumber, nil
}

// Append inserts the events atomically if the highest sequence number matching the filter is still
// expectedMaxSequenceNumber. The filter must be the one used for the Query the decision was based on.
// Returns eventstore.ErrConcurrencyConflict when the boundary changed in between.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {
	start := time.Now()
	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)
	ctx, span := es.instr.StartSpan(ctx, eventstore.SpanNameAppend, map[string]string{
		eventstore.AttrFilter:      filter.String(),
		eventstore.AttrEventCount:  formatUint(uint(len(allEvents))),
		eventstore.AttrExpectedSeq: formatUint(expectedMaxSequenceNumber),
	})

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
	lockQuery, err := es.buildLockQuery()
	if err != nil {
		es.instr.Error(ctx, logMsgBuildInsertQueryFailed, err)
		return err
	}

	insertQuery, err := es.buildInsertQuery(allEvents, filter, expectedMaxSequenceNumber)
	if err != nil {
		es.instr.Error(ctx, logMsgBuildInsertQueryFailed, err, eventstore.AttrEventCount, len(allEvents))
		return err
	}

	var rowsAffected int64

	txErr := es.db.InTx(ctx, func(tx adapters.DBExecutor) error {
		if _, lockErr := tx.Exec(ctx, lockQuery); lockErr != nil {
			return lockErr
		}

		execStart := time.Now()
		result, execErr := tx.Exec(ctx, insertQuery)
		es.instr.Debug(ctx, logMsgSQLExecuted+eventstore.OperationAppend,
			eventstore.AttrDurationMS, eventstore.ToMilliseconds(time.Since(execStart)),
			eventstore.AttrQuery, insertQuery)

		if execErr != nil {
			return execErr
		}

		affected, affectedErr := result.RowsAffected()
		if affectedErr != nil {
			return errors.Join(eventstore.ErrGettingRowsAffectedFailed, affectedErr)
		}

		rowsAffected = affected

		return nil
	})

	if txErr != nil {
		es.instr.Error(ctx, logMsgDBExecFailed, txErr, eventstore.AttrQuery, insertQuery)
		return eventstore.StoreFailure(eventstore.ErrAppendingEventFailed, txErr)
	}

	if rowsAffected < int64(len(allEvents)) {
		es.instr.Info(ctx, logMsgConcurrencyConflict,
			eventstore.AttrEventCount, len(allEvents),
			logAttrRowsAffected, rowsAffected,
			eventstore.AttrExpectedSeq, expectedMaxSequenceNumber)

		return eventstore.ErrConcurrencyConflict
	}

	return nil
}

func (es *EventStore) buildSelectQuery(filter eventstore.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	whereExpr, err := whereClause(filter)
	if err != nil {
		return "", err
	}

	if whereExpr != nil {
		selectStmt = selectStmt.Where(whereExpr)
	}

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", eventstore.StoreFailure(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildLockQuery serializes appends per events table until the surrounding transaction ends.
func (es *EventStore) buildLockQuery() (string, error) {
	lockStmt := goqu.Dialect(dialectPostgres).
		Select(goqu.Func("pg_advisory_xact_lock", goqu.Func("hashtext", es.eventTableName)))

	sqlQuery, _, err := lockStmt.ToSQL()
	if err != nil {
		return "", eventstore.StoreFailure(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildInsertQuery builds an INSERT ... SELECT that only yields rows while the boundary's
// max sequence number still equals expectedMaxSequenceNumber.
func (es *EventStore) buildInsertQuery(
	events eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, error) {
	builder := goqu.Dialect(dialectPostgres)

	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	whereExpr, err := whereClause(filter)
	if err != nil {
		return "", err
	}

	if whereExpr != nil {
		cteStmt = cteStmt.Where(whereExpr)
	}

	var valuesStmt *goqu.SelectDataset

	for _, event := range events {
		stmt := builder.Select(
			goqu.L(castText, event.EventType).As(colEventType),
			goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
			goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
		)

		if valuesStmt == nil {
			valuesStmt = stmt
			continue
		}

		valuesStmt = valuesStmt.UnionAll(stmt)
	}

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					goqu.I(cteVals+"."+colEventType),
					goqu.I(cteVals+"."+colOccurredAt),
					goqu.I(cteVals+"."+colPayload),
					goqu.I(cteVals+"."+colMetadata),
				).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", eventstore.StoreFailure(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// whereClause translates the filter; predicates become jsonb containment checks so the GIN index on payload applies.
func whereClause(filter eventstore.Filter) (exp.Expression, error) {
	if len(filter.Items()) == 0 {
		return nil, nil
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
				doc, err := jsoniter.ConfigFastest.MarshalToString(map[string]string{predicate.Key(): predicate.Val()})
				if err != nil {
					return nil, eventstore.StoreFailure(eventstore.ErrBuildingQueryFailed, err)
				}

				predicateExpressions = append(predicateExpressions, goqu.L(containsJsonb, doc))
			}

			if item.AllPredicatesMustMatch() {
				itemExpr = append(itemExpr, goqu.And(predicateExpressions...))
			} else {
				itemExpr = append(itemExpr, goqu.Or(predicateExpressions...))
			}
		}

		if len(itemExpr) == 0 {
			return nil, nil
		}

		itemExpressions = append(itemExpressions, goqu.And(itemExpr...))
	}

	return goqu.Or(itemExpressions...), nil
}
