package renewloan

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide extends an open loan by one loan period.
// Renewing an overdue loan charges the fine accrued so far; the loan's fine base moves to now,
// so the next return only charges what accrues afterwards.
//
//	ERROR: NotFound, AlreadyClosed, RenewalCapExceeded, ReservationPending
func Decide(history core.DomainEvents, command Command, policy core.Policy) core.DecisionResult {
	state := boundary.Project(history)

	loan, ok := state.Loans.Loan(command.LoanID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityLoan, command.LoanID))
	}

	if err := loan.CheckRenewable(policy); err != nil {
		return core.ErrorDecision(err)
	}

	if state.Queue.HasWaiting(loan.TitleID) {
		return core.ErrorDecision(core.ReservationPending(loan.ID))
	}

	changes := state.Begin()

	if amount := loan.AccruedFine(command.OccurredAt, policy); amount.IsPositive() {
		changes.Record(core.BuildFineApplied(loan.MemberID, loan.ID, loan.TitleID, amount, core.FineReasonOverdue, command.OccurredAt))
	}

	changes.Record(core.BuildLoanRenewed(
		loan.ID, loan.TitleID, loan.MemberID, loan.DueAt.Add(policy.LoanPeriod), loan.RenewalCount+1, command.OccurredAt))

	return changes.Success()
}

func BuildEventFilter(titleID core.TitleIDString, memberID core.MemberIDString) eventstore.Filter {
	return boundary.TitleOrMemberFilter(titleID, memberID)
}
