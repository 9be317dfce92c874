package expirereservation

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/reservations"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide expires a ReadyForPickup reservation whose pickup window has elapsed and hands
// the released copy to the next Waiting member. With nobody waiting the copy becomes Available.
//
//	ERROR: NotFound, InvalidState when not ReadyForPickup or the window is still open
//	IDEMPOTENCY: an Expired reservation records nothing
func Decide(history core.DomainEvents, command Command, policy core.Policy) core.DecisionResult {
	state := boundary.Project(history)

	r, ok := state.Queue.Reservation(command.ReservationID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityReservation, command.ReservationID))
	}

	if r.State == reservations.StateExpired {
		return core.IdempotentDecision()
	}

	if err := r.Expire(command.OccurredAt); err != nil {
		return core.ErrorDecision(err)
	}

	changes := state.Begin()
	changes.Record(core.BuildReservationExpired(r.ID, r.TitleID, r.MemberID, r.CopyID, command.OccurredAt))
	changes.HandOver(r.TitleID, r.CopyID, command.OccurredAt, policy)

	return changes.Success()
}

func BuildEventFilter(titleID core.TitleIDString, memberID core.MemberIDString) eventstore.Filter {
	return boundary.TitleOrMemberFilter(titleID, memberID)
}
