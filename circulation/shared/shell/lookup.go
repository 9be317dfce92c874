package shell

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Lookups resolve an ID to the immutable facts recorded when the entity came into being
// (a loan's title and member, say), so a handler can build the boundary filter of the actual decision.
// Facts that never change need no consistency boundary of their own.

// LookupLoan returns the LoanOpened event of the loan, or NotFound.
func LookupLoan(ctx context.Context, store QueriesEvents, loanID core.LoanIDString) (core.LoanOpened, error) {
	return lookup[core.LoanOpened](ctx, store, core.LoanOpenedEventType, core.PropLoanID, loanID, core.EntityLoan)
}

// LookupReservation returns the ReservationPlaced event of the reservation, or NotFound.
func LookupReservation(ctx context.Context, store QueriesEvents, reservationID core.ReservationIDString) (core.ReservationPlaced, error) {
	return lookup[core.ReservationPlaced](ctx, store, core.ReservationPlacedEventType, core.PropReservationID, reservationID, core.EntityReservation)
}

// LookupCopy returns the CopyAddedToTitle event of the copy, or NotFound.
func LookupCopy(ctx context.Context, store QueriesEvents, copyID core.CopyIDString) (core.CopyAddedToTitle, error) {
	return lookup[core.CopyAddedToTitle](ctx, store, core.CopyAddedToTitleEventType, core.PropCopyID, copyID, core.EntityCopy)
}

func lookup[E core.DomainEvent](
	ctx context.Context,
	store QueriesEvents,
	eventType string,
	property string,
	id string,
	entity string,
) (E, error) {
	var zero E

	filter := eventstore.NewFilter(eventstore.Types(eventType).WhereAny(eventstore.P(property, id)))

	storableEvents, _, err := store.Query(ctx, filter)
	if err != nil {
		return zero, err
	}

	if len(storableEvents) == 0 {
		return zero, core.NotFound(entity, id)
	}

	event, err := DomainEventFrom(storableEvents[0])
	if err != nil {
		return zero, err
	}

	typed, ok := event.(E)
	if !ok {
		return zero, ErrMappingToDomainEventFailed
	}

	return typed, nil
}
