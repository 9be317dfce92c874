package markcopylost

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/catalog"
	"github.com/AntonStoeckl/library-circulation/circulation/ledger"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide declares a copy lost. A Lent copy's loan is closed in the same decision, the borrower is
// charged the overdue fine accrued so far and the replacement fee.
//
// expectedBorrower is the borrower the handler resolved before querying. If the history shows
// a different borrower, the boundary no longer covers the loan and the decision asks for a retry.
//
//	ERROR: NotFound for an unknown copy, InvalidState for a ReservedPendingPickup copy
//	IDEMPOTENCY: a Lost copy records nothing
func Decide(
	history core.DomainEvents,
	command Command,
	expectedBorrower core.MemberIDString,
	policy core.Policy,
) core.DecisionResult {
	state := boundary.Project(history)

	cp, ok := state.Catalog.Copy(command.CopyID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityCopy, command.CopyID))
	}

	if cp.State == catalog.CopyLost {
		return core.IdempotentDecision()
	}

	if _, err := cp.MarkLost(); err != nil {
		return core.ErrorDecision(err)
	}

	changes := state.Begin()

	if cp.State == catalog.CopyLent {
		loan, found := state.Loans.OpenLoanForCopy(cp.ID)
		if !found || loan.MemberID != expectedBorrower {
			return core.ErrorDecision(core.ErrBoundaryChanged)
		}

		changes.Record(closeLostLoan(loan, command, policy)...)
	}

	changes.Record(core.BuildCopyMarkedLost(cp.ID, cp.TitleID, command.OccurredAt))

	return changes.Success()
}

func closeLostLoan(loan ledger.Loan, command Command, policy core.Policy) core.DomainEvents {
	events := core.DomainEvents{
		core.BuildLoanClosed(loan.ID, loan.CopyID, loan.TitleID, loan.MemberID, true, command.OccurredAt),
	}

	if overdue := loan.AccruedFine(command.OccurredAt, policy); overdue.IsPositive() {
		events = append(events, core.BuildFineApplied(
			loan.MemberID, loan.ID, loan.TitleID, overdue, core.FineReasonOverdue, command.OccurredAt))
	}

	if policy.LostCopyFee.IsPositive() {
		events = append(events, core.BuildFineApplied(
			loan.MemberID, loan.ID, loan.TitleID, policy.LostCopyFee, core.FineReasonLostCopy, command.OccurredAt))
	}

	return events
}

// CurrentBorrower returns the member holding the copy according to the title's history, or "".
func CurrentBorrower(history core.DomainEvents, copyID core.CopyIDString) core.MemberIDString {
	state := boundary.Project(history)
	if loan, ok := state.Loans.OpenLoanForCopy(copyID); ok {
		return loan.MemberID
	}

	return ""
}

// BuildEventFilter covers the title and, when the copy is lent, the borrower who gets charged.
func BuildEventFilter(titleID core.TitleIDString, borrower core.MemberIDString) eventstore.Filter {
	if borrower == "" {
		return boundary.TitleFilter(titleID)
	}

	return boundary.TitleOrMemberFilter(titleID, borrower)
}
