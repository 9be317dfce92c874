package borrowcopy

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide lends a copy of the title to the member.
//
// The member's own ReadyForPickup reservation takes precedence over the shelf. Without a free copy
// the member is queued and the decision fails with Unavailable; the ReservationPlaced event is
// still appended and travels with the error.
//
//	ERROR: NotFound, Ineligible, DuplicateReservation, Unavailable
//	IDEMPOTENCY: an open loan by the member on the title is returned as is
func Decide(history core.DomainEvents, command Command, policy core.Policy) core.DecisionResult {
	state := boundary.Project(history)

	member, ok := state.Members.Member(command.MemberID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityMember, command.MemberID))
	}

	if !state.Catalog.HasTitle(command.TitleID) {
		return core.ErrorDecision(core.NotFound(core.EntityTitle, command.TitleID))
	}

	if err := state.Eligibility(member, command.OccurredAt, policy).Err(member.ID); err != nil {
		return core.ErrorDecision(err)
	}

	if loan, open := state.Loans.OpenLoanOn(command.MemberID, command.TitleID); open {
		return core.IdempotentDecision(loan.History...)
	}

	dueAt := command.OccurredAt.Add(policy.LoanPeriod)

	if ready, found := state.Queue.ReadyFor(command.MemberID, command.TitleID); found {
		if err := ready.Fulfil(); err != nil {
			return core.ErrorDecision(err)
		}

		return core.SuccessDecision(
			core.BuildLoanOpened(command.LoanID, ready.CopyID, command.TitleID, command.MemberID, dueAt, command.OccurredAt),
			core.BuildReservationFulfilled(ready.ID, command.TitleID, command.MemberID, ready.CopyID, command.LoanID, command.OccurredAt),
		)
	}

	if _, active := state.Queue.ActiveFor(command.MemberID, command.TitleID); active {
		return core.ErrorDecision(core.DuplicateReservation(command.TitleID, command.MemberID))
	}

	cp, available, err := state.Catalog.FindAvailableCopy(command.TitleID)
	if err != nil {
		return core.ErrorDecision(err)
	}

	if available {
		if _, err = cp.MarkLent(); err != nil {
			return core.ErrorDecision(err)
		}

		return core.SuccessDecision(
			core.BuildLoanOpened(command.LoanID, cp.ID, command.TitleID, command.MemberID, dueAt, command.OccurredAt),
		)
	}

	return core.ErrorDecision(
		core.Unavailable(command.TitleID),
		core.BuildReservationPlaced(command.ReservationID, command.TitleID, command.MemberID, command.OccurredAt),
	)
}

func BuildEventFilter(titleID core.TitleIDString, memberID core.MemberIDString) eventstore.Filter {
	return boundary.TitleOrMemberFilter(titleID, memberID)
}
