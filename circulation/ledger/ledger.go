// Package ledger owns loans: which copy is held by which member, until when, and how often it was renewed.
package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation/circulation/fine"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

// LoanState is the closed set of loan states.
type LoanState int

const (
	LoanOpen LoanState = iota + 1
	LoanClosed
)

func (s LoanState) String() string {
	switch s {
	case LoanOpen:
		return "Open"
	case LoanClosed:
		return "Closed"
	default:
		return fmt.Sprintf("LoanState(%d)", int(s))
	}
}

// Loan is the projected state of one loan.
type Loan struct {
	ID           core.LoanIDString
	CopyID       core.CopyIDString
	TitleID      core.TitleIDString
	MemberID     core.MemberIDString
	StartedAt    time.Time
	DueAt        time.Time
	ReturnedAt   *time.Time
	RenewalCount int
	State        LoanState
	FinedThrough time.Time // set when an overdue renewal charged the fine accrued so far

	History core.DomainEvents // LoanOpened and LoanRenewed, in order
}

// Close validates that the loan can be closed.
func (l Loan) Close() error {
	if l.State != LoanOpen {
		return core.AlreadyClosed(l.ID)
	}

	return nil
}

// CheckRenewable validates state and renewal cap. Waiting reservations are checked by the caller.
func (l Loan) CheckRenewable(policy core.Policy) error {
	if err := l.Close(); err != nil {
		return err
	}

	if l.RenewalCount >= policy.RenewalCap {
		return core.RenewalCapExceeded(l.ID)
	}

	return nil
}

// FineBase is the instant the overdue fine accrues from: the due date, or the last overdue renewal if later.
func (l Loan) FineBase() time.Time {
	if l.FinedThrough.After(l.DueAt) {
		return l.FinedThrough
	}

	return l.DueAt
}

// AccruedFine is the fine the loan would incur if it ended at the given instant.
func (l Loan) AccruedFine(at time.Time, policy core.Policy) decimal.Decimal {
	return fine.Compute(l.FineBase(), at, policy.DailyFineRate, policy.CurrencyPrecision)
}

// IsOverdue reports whether at least one fine day has accrued at the given instant.
func (l Loan) IsOverdue(at time.Time) bool {
	return fine.DaysOverdue(l.FineBase(), at) > 0
}

// Ledger is the projected state of all loans seen in a history.
type Ledger struct {
	loans map[core.LoanIDString]*Loan
	order []core.LoanIDString
}

func New() *Ledger {
	return &Ledger{loans: make(map[core.LoanIDString]*Loan)}
}

// Apply folds one event into the ledger.
func (l *Ledger) Apply(event core.DomainEvent) {
	switch e := event.(type) {
	case core.LoanOpened:
		if _, ok := l.loans[e.LoanID]; ok {
			return
		}

		l.loans[e.LoanID] = &Loan{
			ID:        e.LoanID,
			CopyID:    e.CopyID,
			TitleID:   e.TitleID,
			MemberID:  e.MemberID,
			StartedAt: e.OccurredAt,
			DueAt:     e.DueAt,
			State:     LoanOpen,
			History:   core.DomainEvents{e},
		}
		l.order = append(l.order, e.LoanID)

	case core.LoanRenewed:
		if loan, ok := l.loans[e.LoanID]; ok {
			loan.DueAt = e.DueAt
			loan.RenewalCount = e.RenewalCount
			loan.History = append(loan.History, e)
		}

	case core.LoanClosed:
		if loan, ok := l.loans[e.LoanID]; ok {
			returnedAt := e.OccurredAt
			loan.State = LoanClosed
			loan.ReturnedAt = &returnedAt
		}

	case core.FineApplied:
		if e.Reason != core.FineReasonOverdue || e.LoanID == "" {
			return
		}

		if loan, ok := l.loans[e.LoanID]; ok && loan.State == LoanOpen {
			loan.FinedThrough = e.OccurredAt
		}
	}
}

// Loan returns a snapshot of one loan.
func (l *Ledger) Loan(loanID core.LoanIDString) (Loan, bool) {
	loan, ok := l.loans[loanID]
	if !ok {
		return Loan{}, false
	}

	return snapshot(loan), true
}

// OpenLoansOf returns the member's open loans in the order they were opened.
func (l *Ledger) OpenLoansOf(memberID core.MemberIDString) []Loan {
	return l.openWhere(func(loan *Loan) bool { return loan.MemberID == memberID })
}

// OpenLoanOn returns the member's open loan on the title, if any.
func (l *Ledger) OpenLoanOn(memberID core.MemberIDString, titleID core.TitleIDString) (Loan, bool) {
	loans := l.openWhere(func(loan *Loan) bool { return loan.MemberID == memberID && loan.TitleID == titleID })
	if len(loans) == 0 {
		return Loan{}, false
	}

	return loans[0], true
}

// OpenLoanForCopy returns the open loan holding the copy, if any.
func (l *Ledger) OpenLoanForCopy(copyID core.CopyIDString) (Loan, bool) {
	loans := l.openWhere(func(loan *Loan) bool { return loan.CopyID == copyID })
	if len(loans) == 0 {
		return Loan{}, false
	}

	return loans[0], true
}

// FineBases returns the fine base of every given loan, as used by membership.CheckEligibility.
func FineBases(loans []Loan) []time.Time {
	bases := make([]time.Time, 0, len(loans))
	for _, loan := range loans {
		bases = append(bases, loan.FineBase())
	}

	return bases
}

func (l *Ledger) openWhere(match func(*Loan) bool) []Loan {
	out := make([]Loan, 0)

	for _, id := range l.order {
		if loan := l.loans[id]; loan.State == LoanOpen && match(loan) {
			out = append(out, snapshot(loan))
		}
	}

	return out
}

func snapshot(loan *Loan) Loan {
	s := *loan
	s.History = slices.Clone(loan.History)

	return s
}
