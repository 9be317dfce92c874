package memberaccount

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Project builds the account from the member's boundary history.
// The bool is false for an unknown member.
func Project(history core.DomainEvents, query Query, maxSequence uint, policy core.Policy) (MemberAccount, bool) {
	state := boundary.Project(history)

	member, ok := state.Members.Member(query.MemberID)
	if !ok {
		return MemberAccount{}, false
	}

	eligibility := state.Eligibility(member, query.At, policy)

	account := MemberAccount{
		MemberID:            member.ID,
		Name:                member.Name,
		Status:              member.Status.String(),
		SuspensionReason:    member.SuspensionReason,
		Balance:             member.Balance,
		Accruing:            eligibility.Accruing,
		Eligible:            eligibility.Eligible,
		IneligibilityReason: eligibility.Reason,
		OpenLoans:           make([]LoanInfo, 0),
		Reservations:        make([]ReservationInfo, 0),
		SequenceNumber:      maxSequence,
	}

	for _, loan := range state.Loans.OpenLoansOf(member.ID) {
		account.OpenLoans = append(account.OpenLoans, LoanInfo{
			LoanID:       loan.ID,
			CopyID:       loan.CopyID,
			TitleID:      loan.TitleID,
			StartedAt:    loan.StartedAt,
			DueAt:        loan.DueAt,
			RenewalCount: loan.RenewalCount,
			Overdue:      loan.IsOverdue(query.At),
			AccruedFine:  loan.AccruedFine(query.At, policy),
		})
	}

	for _, r := range state.Queue.ActiveOf(member.ID) {
		account.Reservations = append(account.Reservations, ReservationInfo{
			ReservationID: r.ID,
			TitleID:       r.TitleID,
			State:         r.State.String(),
			PlacedAt:      r.PlacedAt,
			CopyID:        r.CopyID,
			PickupBy:      r.PickupBy,
		})
	}

	return account, true
}

func BuildEventFilter(memberID core.MemberIDString) eventstore.Filter {
	return boundary.MemberFilter(memberID)
}
