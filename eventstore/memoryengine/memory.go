// Package memoryengine is an in-process event store with the same Query/Append semantics as the SQL engines.
//
// It serializes appends with a mutex, which makes the conditional append trivially atomic.
// Use it for tests and for embedding the engine where no persistence is wanted.
package memoryengine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

const engineName = "memory"

const (
	logMsgQueryCompleted      = "eventstore operation: query completed"
	logMsgEventsAppended      = "eventstore operation: events appended"
	logMsgConcurrencyConflict = "eventstore operation: concurrency conflict detected"
	logMsgDecodePayloadFailed = "failed to decode event payload"
)

type record struct {
	event          eventstore.StorableEvent
	lookup         eventstore.PayloadLookup
	sequenceNumber eventstore.MaxSequenceNumberUint
}

// EventStore keeps events in memory. The zero value is not usable, use NewEventStore.
type EventStore struct {
	mu      sync.RWMutex
	records []record
	instr   eventstore.Instrumentation
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore)

// WithLogger sets the logger for the EventStore.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) {
		es.instr.Logger = logger
	}
}

// WithContextualLogger sets the contextual logger for the EventStore.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) {
		es.instr.ContextualLogger = logger
	}
}

// WithMetrics sets the metrics collector for the EventStore.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) {
		es.instr.Metrics = collector
	}
}

// WithTracing sets the tracing collector for the EventStore.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) {
		es.instr.Tracing = collector
	}
}

// NewEventStore creates an empty in-memory EventStore.
func NewEventStore(options ...Option) *EventStore {
	es := &EventStore{
		instr: eventstore.Instrumentation{Engine: engineName},
	}

	for _, option := range options {
		option(es)
	}

	return es
}

// Query returns all events matching the filter in sequence order and the highest matching sequence number.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {
	start := time.Now()
	ctx, span := es.instr.StartSpan(ctx, eventstore.SpanNameQuery, map[string]string{eventstore.AttrFilter: filter.String()})

	if err := ctx.Err(); err != nil {
		err = eventstore.StoreFailure(eventstore.ErrQueryingEventsFailed, err)
		es.finish(ctx, span, eventstore.OperationQuery, start, 0, err)
		return nil, 0, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	events := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for _, r := range es.records {
		if filter.Matches(r.event.EventType, r.lookup) {
			events = append(events, r.event)
			maxSequenceNumber = r.sequenceNumber
		}
	}

	es.finish(ctx, span, eventstore.OperationQuery, start, len(events), nil)
	es.instr.Debug(ctx, logMsgQueryCompleted, eventstore.AttrEventCount, len(events), eventstore.AttrMaxSequence, maxSequenceNumber)

	return events, maxSequenceNumber, nil
}

// Append adds the events atomically if the highest sequence number matching the filter
// is still expectedMaxSequenceNumber, otherwise it returns eventstore.ErrConcurrencyConflict.
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

	if err := ctx.Err(); err != nil {
		err = eventstore.StoreFailure(eventstore.ErrAppendingEventFailed, err)
		es.finish(ctx, span, eventstore.OperationAppend, start, 0, err)
		return err
	}

	pending := make([]record, 0, len(allEvents))
	for _, e := range allEvents {
		lookup, err := eventstore.PayloadLookupFrom(e.PayloadJSON)
		if err != nil {
			err = eventstore.StoreFailure(eventstore.ErrAppendingEventFailed, err)
			es.instr.Error(ctx, logMsgDecodePayloadFailed, err)
			es.finish(ctx, span, eventstore.OperationAppend, start, 0, err)

			return err
		}

		pending = append(pending, record{event: e, lookup: lookup})
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	current := eventstore.MaxSequenceNumberUint(0)
	for _, r := range es.records {
		if filter.Matches(r.event.EventType, r.lookup) {
			current = r.sequenceNumber
		}
	}

	if current != expectedMaxSequenceNumber {
		es.instr.Info(ctx, logMsgConcurrencyConflict, eventstore.AttrExpectedSeq, expectedMaxSequenceNumber, eventstore.AttrMaxSequence, current)
		es.finish(ctx, span, eventstore.OperationAppend, start, 0, eventstore.ErrConcurrencyConflict)

		return eventstore.ErrConcurrencyConflict
	}

	next := eventstore.MaxSequenceNumberUint(len(es.records))
	for i := range pending {
		next++
		pending[i].sequenceNumber = next
	}

	es.records = append(es.records, pending...)

	es.finish(ctx, span, eventstore.OperationAppend, start, len(pending), nil)
	es.instr.Debug(ctx, logMsgEventsAppended, eventstore.AttrEventCount, len(pending))

	return nil
}

// All returns a copy of every stored event in sequence order.
func (es *EventStore) All() eventstore.StorableEvents {
	es.mu.RLock()
	defer es.mu.RUnlock()

	events := make(eventstore.StorableEvents, 0, len(es.records))
	for _, r := range es.records {
		events = append(events, r.event)
	}

	return slices.Clip(events)
}

func (es *EventStore) finish(ctx context.Context, span eventstore.SpanContext, operation string, start time.Time, count int, err error) {
	duration := time.Since(start)
	es.instr.RecordOperation(ctx, operation, duration, count, err)
	es.instr.FinishSpan(span, eventstore.StatusFor(err), duration, err)
}
