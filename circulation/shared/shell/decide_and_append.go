package shell

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// DecideFunc is a pure decision over the boundary's history.
type DecideFunc func(history core.DomainEvents) core.DecisionResult

// DecideAndAppend runs the query-decide-append cycle of a command inside one consistency boundary.
//
// The history matching filter is queried, decide runs on it, and the resulting events are appended
// with the boundary's max sequence number as precondition. A concurrency conflict re-runs the whole
// cycle with backoff. A rejected decision is returned as the error, after its events (if any) were appended.
func DecideAndAppend(
	ctx context.Context,
	store EventStore,
	filter eventstore.Filter,
	decide DecideFunc,
	retryOptions ...RetryOption,
) (HandlerResult, error) {
	resolve := func(context.Context) (eventstore.Filter, DecideFunc, error) {
		return filter, decide, nil
	}

	return ResolveDecideAndAppend(ctx, store, resolve, retryOptions...)
}

// ResolveFunc chooses the boundary of a decision from facts outside of it.
type ResolveFunc func(ctx context.Context) (eventstore.Filter, DecideFunc, error)

// ResolveDecideAndAppend is DecideAndAppend for decisions whose boundary depends on current state,
// like the borrower of a copy. resolve runs again on every attempt, and a decision that returns
// core.ErrBoundaryChanged is retried instead of surfaced.
func ResolveDecideAndAppend(
	ctx context.Context,
	store EventStore,
	resolve ResolveFunc,
	retryOptions ...RetryOption,
) (HandlerResult, error) {
	var decision core.DecisionResult

	commandID := uuid.New()
	correlationID, ok := CorrelationIDFrom(ctx)
	if !ok {
		correlationID = commandID
	}

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		filter, decide, resolveErr := resolve(ctx)
		if resolveErr != nil {
			return resolveErr
		}

		var attemptErr error
		decision, attemptErr = queryDecideAppend(ctx, store, filter, decide, commandID, correlationID)

		return attemptErr
	}, retryOptions...)

	if err != nil {
		return NewErrorResult(retryMetrics), err
	}

	if decision.IsIdempotent() {
		return NewIdempotentResult(retryMetrics, decision.Events), nil
	}

	if decisionErr := decision.HasError(); decisionErr != nil {
		return NewErrorResult(retryMetrics, decision.Events...), decisionErr
	}

	return NewSuccessResult(retryMetrics, decision.Events), nil
}

func queryDecideAppend(
	ctx context.Context,
	store EventStore,
	filter eventstore.Filter,
	decide DecideFunc,
	commandID uuid.UUID,
	correlationID uuid.UUID,
) (core.DecisionResult, error) {
	storableEvents, maxSequenceNumber, err := store.Query(ctx, filter)
	if err != nil {
		return core.DecisionResult{}, err
	}

	history, err := DomainEventsFrom(storableEvents)
	if err != nil {
		return core.DecisionResult{}, err
	}

	decision := decide(history)

	if decisionErr := decision.HasError(); errors.Is(decisionErr, core.ErrBoundaryChanged) {
		return core.DecisionResult{}, decisionErr
	}

	if !decision.HasEventToAppend() {
		return decision, nil
	}

	toAppend := make(eventstore.StorableEvents, 0, len(decision.Events))
	for _, event := range decision.Events {
		storableEvent, mapErr := StorableEventFrom(event, BuildEventMetadata(uuid.New(), commandID, correlationID))
		if mapErr != nil {
			return core.DecisionResult{}, mapErr
		}

		toAppend = append(toAppend, storableEvent)
	}

	if err := store.Append(ctx, filter, maxSequenceNumber, toAppend[0], toAppend[1:]...); err != nil {
		return core.DecisionResult{}, err
	}

	return decision, nil
}

// ProjectFunc folds a history into a query result.
type ProjectFunc[R any] func(history core.DomainEvents, maxSequenceNumber uint) R

// QueryAndProject queries the history matching filter and projects it.
func QueryAndProject[R any](ctx context.Context, store QueriesEvents, filter eventstore.Filter, project ProjectFunc[R]) (R, error) {
	var zero R

	storableEvents, maxSequenceNumber, err := store.Query(ctx, filter)
	if err != nil {
		return zero, err
	}

	history, err := DomainEventsFrom(storableEvents)
	if err != nil {
		return zero, err
	}

	return project(history, uint(maxSequenceNumber)), nil
}
