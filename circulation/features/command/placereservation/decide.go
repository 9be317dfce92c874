package placereservation

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/membership"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide puts the member at the end of the title's queue. When a copy is on the shelf
// the queue is empty, so the new reservation is activated with that copy immediately.
//
//	ERROR: NotFound, Ineligible (Suspended), DuplicateReservation, InvalidState (AlreadyBorrowed)
func Decide(history core.DomainEvents, command Command, policy core.Policy) core.DecisionResult {
	state := boundary.Project(history)

	member, ok := state.Members.Member(command.MemberID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityMember, command.MemberID))
	}

	if !state.Catalog.HasTitle(command.TitleID) {
		return core.ErrorDecision(core.NotFound(core.EntityTitle, command.TitleID))
	}

	if member.Status == membership.StatusSuspended {
		return core.ErrorDecision(core.Ineligible(member.ID, core.ReasonSuspended))
	}

	if _, active := state.Queue.ActiveFor(command.MemberID, command.TitleID); active {
		return core.ErrorDecision(core.DuplicateReservation(command.TitleID, command.MemberID))
	}

	if _, open := state.Loans.OpenLoanOn(command.MemberID, command.TitleID); open {
		return core.ErrorDecision(core.InvalidState(core.EntityTitle, command.TitleID, core.ReasonAlreadyBorrowed))
	}

	changes := state.Begin()
	changes.Record(core.BuildReservationPlaced(command.ReservationID, command.TitleID, command.MemberID, command.OccurredAt))

	cp, available, err := state.Catalog.FindAvailableCopy(command.TitleID)
	if err != nil {
		return core.ErrorDecision(err)
	}

	if available {
		changes.HandOver(command.TitleID, cp.ID, command.OccurredAt, policy)
	}

	return changes.Success()
}

func BuildEventFilter(titleID core.TitleIDString, memberID core.MemberIDString) eventstore.Filter {
	return boundary.TitleOrMemberFilter(titleID, memberID)
}
