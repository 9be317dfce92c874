package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

// LoanReceipt describes a loan after Borrow or Renew.
type LoanReceipt struct {
	LoanID       core.LoanIDString
	CopyID       core.CopyIDString
	TitleID      core.TitleIDString
	MemberID     core.MemberIDString
	DueAt        time.Time
	RenewalCount int
	// FineCharged is the overdue fine applied by this operation (renewing an overdue loan).
	FineCharged decimal.Decimal
	// FulfilledReservationID is set when the loan picked up the member's reservation.
	FulfilledReservationID core.ReservationIDString
	// Idempotent is true when the member already held this loan.
	Idempotent bool
}

// ReservationReceipt describes a reservation right after it was placed.
// Position is 0 unless the reservation is Waiting.
type ReservationReceipt struct {
	ReservationID core.ReservationIDString
	TitleID       core.TitleIDString
	MemberID      core.MemberIDString
	State         string
	Position      int
	CopyID        core.CopyIDString
	PickupBy      time.Time
}

// BorrowReceipt is the outcome of Borrow. Exactly one of Loan and Reservation is set;
// Reservation comes with an Unavailable error.
type BorrowReceipt struct {
	Loan        *LoanReceipt
	Reservation *ReservationReceipt
}

// ReturnReceipt is the outcome of Return.
type ReturnReceipt struct {
	LoanID     core.LoanIDString
	CopyID     core.CopyIDString
	TitleID    core.TitleIDString
	MemberID   core.MemberIDString
	ReturnedAt time.Time
	Fine       decimal.Decimal
	HandedTo   core.ReservationIDString // the reservation the copy went to, if anyone waited
}

// ReleaseReceipt is the outcome of Cancel and Expire.
// CopyID is the copy the reservation released, HandedTo the reservation it went to next.
type ReleaseReceipt struct {
	ReservationID core.ReservationIDString
	CopyID        core.CopyIDString
	HandedTo      core.ReservationIDString
	Idempotent    bool
}
