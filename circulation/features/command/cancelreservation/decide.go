package cancelreservation

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/reservations"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide withdraws a Waiting or ReadyForPickup reservation. An earmarked copy goes to the next in line.
//
//	ERROR: NotFound, InvalidState for an Expired or Fulfilled reservation
//	IDEMPOTENCY: a Cancelled reservation records nothing
func Decide(history core.DomainEvents, command Command, policy core.Policy) core.DecisionResult {
	state := boundary.Project(history)

	r, ok := state.Queue.Reservation(command.ReservationID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityReservation, command.ReservationID))
	}

	if r.State == reservations.StateCancelled {
		return core.IdempotentDecision()
	}

	if err := r.Cancel(); err != nil {
		return core.ErrorDecision(err)
	}

	var heldCopy core.CopyIDString
	if r.State == reservations.StateReadyForPickup {
		heldCopy = r.CopyID
	}

	changes := state.Begin()
	changes.Record(core.BuildReservationCancelled(r.ID, r.TitleID, r.MemberID, heldCopy, command.OccurredAt))

	if heldCopy != "" {
		changes.HandOver(r.TitleID, heldCopy, command.OccurredAt, policy)
	}

	return changes.Success()
}

func BuildEventFilter(titleID core.TitleIDString, memberID core.MemberIDString) eventstore.Filter {
	return boundary.TitleOrMemberFilter(titleID, memberID)
}
