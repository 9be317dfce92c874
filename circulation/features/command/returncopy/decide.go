package returncopy

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide closes a loan, charges the overdue fine and hands the copy to the head of the title's
// queue. All of it is one append, so the copy is never seen Available while someone waits.
//
//	ERROR: NotFound for an unknown loan, AlreadyClosed for a loan that was closed before
func Decide(history core.DomainEvents, command Command, policy core.Policy) core.DecisionResult {
	state := boundary.Project(history)

	loan, ok := state.Loans.Loan(command.LoanID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityLoan, command.LoanID))
	}

	if err := loan.Close(); err != nil {
		return core.ErrorDecision(err)
	}

	changes := state.Begin()
	changes.Record(core.BuildLoanClosed(loan.ID, loan.CopyID, loan.TitleID, loan.MemberID, false, command.OccurredAt))

	if amount := loan.AccruedFine(command.OccurredAt, policy); amount.IsPositive() {
		changes.Record(core.BuildFineApplied(loan.MemberID, loan.ID, loan.TitleID, amount, core.FineReasonOverdue, command.OccurredAt))
	}

	changes.HandOver(loan.TitleID, loan.CopyID, command.OccurredAt, policy)

	return changes.Success()
}

func BuildEventFilter(titleID core.TitleIDString, memberID core.MemberIDString) eventstore.Filter {
	return boundary.TitleOrMemberFilter(titleID, memberID)
}
