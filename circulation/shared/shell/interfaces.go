package shell

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// EventStore is what command handlers need from an engine.
// memoryengine, sqliteengine and postgresengine all satisfy it.
type EventStore interface {
	QueriesEvents
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// QueriesEvents is what query handlers need from an engine.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// Command represents the contract for all command types.
// CommandType must work on the zero value, the observable wrapper relies on it.
type Command interface {
	CommandType() string
}

// CoreCommandHandler processes commands with pure business logic, without observability concerns.
// HandlerResult carries the business outcome (idempotency, resulting events) and retry metadata.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query represents the contract for all query types.
type Query interface {
	QueryType() string
}

// QueryResult is a projection; GetSequenceNumber is the highest sequence number it includes.
type QueryResult interface {
	GetSequenceNumber() uint
}

// CoreQueryHandler retrieves events and projects them, without observability concerns.
type CoreQueryHandler[Q Query, R QueryResult] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
