// Package membership owns members, their balances and borrowing eligibility.
package membership

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation/circulation/fine"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

// Member is the projected state of one member.
// Balance is the sum of applied fines minus the sum of settlements and never drops below zero.
type Member struct {
	ID               core.MemberIDString
	Name             string
	Status           Status
	SuspensionReason string
	Balance          decimal.Decimal
}

// Registry is the projected state of all members seen in a history.
type Registry struct {
	members map[core.MemberIDString]*Member
}

func NewRegistry() *Registry {
	return &Registry{members: make(map[core.MemberIDString]*Member)}
}

// Apply folds one event into the registry. Events for unknown members are ignored.
func (r *Registry) Apply(event core.DomainEvent) {
	switch e := event.(type) {
	case core.MemberRegistered:
		if _, ok := r.members[e.MemberID]; !ok {
			r.members[e.MemberID] = &Member{ID: e.MemberID, Name: e.Name, Status: StatusActive, Balance: decimal.Zero}
		}

	case core.MemberSuspended:
		if m, ok := r.members[e.MemberID]; ok {
			m.Status = StatusSuspended
			m.SuspensionReason = e.Reason
		}

	case core.MemberReinstated:
		if m, ok := r.members[e.MemberID]; ok {
			m.Status = StatusActive
			m.SuspensionReason = ""
		}

	case core.FineApplied:
		if m, ok := r.members[e.MemberID]; ok {
			m.Balance = m.Balance.Add(e.Amount)
		}

	case core.FineSettled:
		if m, ok := r.members[e.MemberID]; ok {
			m.Balance = m.Balance.Sub(e.Amount)
		}
	}
}

// Member returns a snapshot of one member.
func (r *Registry) Member(memberID core.MemberIDString) (Member, bool) {
	m, ok := r.members[memberID]
	if !ok {
		return Member{}, false
	}

	return *m, true
}

// Eligibility is the result of CheckEligibility.
type Eligibility struct {
	Eligible bool
	Reason   core.IneligibilityReason
	Balance  decimal.Decimal
	Accruing decimal.Decimal // fines accruing on overdue open loans, not yet applied
}

// Err returns the Ineligible error for this result, or nil.
func (e Eligibility) Err(memberID core.MemberIDString) error {
	if e.Eligible {
		return nil
	}

	return core.Ineligible(memberID, e.Reason)
}

// CheckEligibility decides whether the member may open another loan.
// fineBases holds, for each open loan, the instant its overdue fine accrues from.
// A member whose balance plus accruing fines equals the threshold is still eligible.
func CheckEligibility(member Member, fineBases []time.Time, now time.Time, policy core.Policy) Eligibility {
	accruing := decimal.Zero
	for _, base := range fineBases {
		accruing = accruing.Add(fine.Compute(base, now, policy.DailyFineRate, policy.CurrencyPrecision))
	}

	result := Eligibility{Eligible: true, Balance: member.Balance, Accruing: accruing}

	switch {
	case member.Status == StatusSuspended:
		result.Eligible, result.Reason = false, core.ReasonSuspended
	case member.Balance.Add(accruing).GreaterThan(policy.SuspensionThreshold):
		result.Eligible, result.Reason = false, core.ReasonFineThresholdExceeded
	case policy.MaxOpenLoans > 0 && len(fineBases) >= policy.MaxOpenLoans:
		result.Eligible, result.Reason = false, core.ReasonLoanLimitReached
	}

	return result
}

// ValidateFine rejects negative amounts.
func ValidateFine(memberID core.MemberIDString, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.InvalidAmount(memberID, "fine must not be negative")
	}

	return nil
}

// ValidateSettlement rejects negative amounts and amounts above the member's balance.
func ValidateSettlement(member Member, amount decimal.Decimal) error {
	switch {
	case amount.IsNegative():
		return core.InvalidAmount(member.ID, "settlement must not be negative")
	case amount.GreaterThan(member.Balance):
		return core.InvalidAmount(member.ID, "settlement of "+amount.String()+" exceeds balance of "+member.Balance.String())
	}

	return nil
}
