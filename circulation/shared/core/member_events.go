package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MemberRegisteredEventType = "MemberRegistered"
	MemberSuspendedEventType  = "MemberSuspended"
	MemberReinstatedEventType = "MemberReinstated"
	FineAppliedEventType      = "FineApplied"
	FineSettledEventType      = "FineSettled"
)

// Reasons recorded on FineApplied.
const (
	FineReasonOverdue  = "Overdue"
	FineReasonLostCopy = "LostCopy"
	FineReasonManual   = "Manual"
)

// MemberRegistered is recorded when a person becomes a library member.
type MemberRegistered struct {
	MemberID   MemberIDString
	Name       string
	OccurredAt OccurredAt
}

func BuildMemberRegistered(memberID, name string, occurredAt time.Time) MemberRegistered {
	return MemberRegistered{
		MemberID:   memberID,
		Name:       name,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e MemberRegistered) IsEventType() string      { return MemberRegisteredEventType }
func (e MemberRegistered) HasOccurredAt() time.Time { return e.OccurredAt }

// MemberSuspended is recorded when a librarian suspends a member's borrowing rights.
type MemberSuspended struct {
	MemberID   MemberIDString
	Reason     string
	OccurredAt OccurredAt
}

func BuildMemberSuspended(memberID, reason string, occurredAt time.Time) MemberSuspended {
	return MemberSuspended{
		MemberID:   memberID,
		Reason:     reason,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e MemberSuspended) IsEventType() string      { return MemberSuspendedEventType }
func (e MemberSuspended) HasOccurredAt() time.Time { return e.OccurredAt }

// MemberReinstated is recorded when a suspension is lifted.
type MemberReinstated struct {
	MemberID   MemberIDString
	OccurredAt OccurredAt
}

func BuildMemberReinstated(memberID string, occurredAt time.Time) MemberReinstated {
	return MemberReinstated{
		MemberID:   memberID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e MemberReinstated) IsEventType() string      { return MemberReinstatedEventType }
func (e MemberReinstated) HasOccurredAt() time.Time { return e.OccurredAt }

// FineApplied adds Amount to the member's balance. LoanID and TitleID are empty for manual fines.
type FineApplied struct {
	MemberID   MemberIDString
	LoanID     LoanIDString
	TitleID    TitleIDString
	Amount     decimal.Decimal
	Reason     string
	OccurredAt OccurredAt
}

func BuildFineApplied(memberID, loanID, titleID string, amount decimal.Decimal, reason string, occurredAt time.Time) FineApplied {
	return FineApplied{
		MemberID:   memberID,
		LoanID:     loanID,
		TitleID:    titleID,
		Amount:     amount,
		Reason:     reason,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e FineApplied) IsEventType() string      { return FineAppliedEventType }
func (e FineApplied) HasOccurredAt() time.Time { return e.OccurredAt }

// FineSettled subtracts Amount from the member's balance.
type FineSettled struct {
	MemberID   MemberIDString
	Amount     decimal.Decimal
	OccurredAt OccurredAt
}

func BuildFineSettled(memberID string, amount decimal.Decimal, occurredAt time.Time) FineSettled {
	return FineSettled{
		MemberID:   memberID,
		Amount:     amount,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e FineSettled) IsEventType() string      { return FineSettledEventType }
func (e FineSettled) HasOccurredAt() time.Time { return e.OccurredAt }
