package core

import (
	"time"
)

// Alias types instead of full value objects.

// TitleIDString identifies a catalogued title.
type TitleIDString = string

// CopyIDString identifies a physical copy of a title.
type CopyIDString = string

// MemberIDString identifies a library member.
type MemberIDString = string

// LoanIDString identifies a loan.
type LoanIDString = string

// ReservationIDString identifies a reservation.
type ReservationIDString = string

// OccurredAt represents when an event occurred.
type OccurredAt = time.Time

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

// Payload property names shared by events and event filters.
const (
	PropTitleID       = "TitleID"
	PropCopyID        = "CopyID"
	PropMemberID      = "MemberID"
	PropLoanID        = "LoanID"
	PropReservationID = "ReservationID"
)
