package core

import (
	"time"
)

const (
	LoanOpenedEventType  = "LoanOpened"
	LoanRenewedEventType = "LoanRenewed"
	LoanClosedEventType  = "LoanClosed"
)

// LoanOpened is recorded when a copy is lent to a member.
type LoanOpened struct {
	LoanID     LoanIDString
	CopyID     CopyIDString
	TitleID    TitleIDString
	MemberID   MemberIDString
	DueAt      time.Time
	OccurredAt OccurredAt
}

func BuildLoanOpened(loanID, copyID, titleID, memberID string, dueAt, occurredAt time.Time) LoanOpened {
	return LoanOpened{
		LoanID:     loanID,
		CopyID:     copyID,
		TitleID:    titleID,
		MemberID:   memberID,
		DueAt:      ToOccurredAt(dueAt),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e LoanOpened) IsEventType() string      { return LoanOpenedEventType }
func (e LoanOpened) HasOccurredAt() time.Time { return e.OccurredAt }

// LoanRenewed moves the due date of an open loan. RenewalCount is the count after this renewal.
type LoanRenewed struct {
	LoanID       LoanIDString
	TitleID      TitleIDString
	MemberID     MemberIDString
	DueAt        time.Time
	RenewalCount int
	OccurredAt   OccurredAt
}

func BuildLoanRenewed(loanID, titleID, memberID string, dueAt time.Time, renewalCount int, occurredAt time.Time) LoanRenewed {
	return LoanRenewed{
		LoanID:       loanID,
		TitleID:      titleID,
		MemberID:     memberID,
		DueAt:        ToOccurredAt(dueAt),
		RenewalCount: renewalCount,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

func (e LoanRenewed) IsEventType() string      { return LoanRenewedEventType }
func (e LoanRenewed) HasOccurredAt() time.Time { return e.OccurredAt }

// LoanClosed is recorded when a copy comes back, or when a lent copy is declared lost (CopyLost).
type LoanClosed struct {
	LoanID     LoanIDString
	CopyID     CopyIDString
	TitleID    TitleIDString
	MemberID   MemberIDString
	CopyLost   bool
	OccurredAt OccurredAt
}

func BuildLoanClosed(loanID, copyID, titleID, memberID string, copyLost bool, occurredAt time.Time) LoanClosed {
	return LoanClosed{
		LoanID:     loanID,
		CopyID:     copyID,
		TitleID:    titleID,
		MemberID:   memberID,
		CopyLost:   copyLost,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e LoanClosed) IsEventType() string      { return LoanClosedEventType }
func (e LoanClosed) HasOccurredAt() time.Time { return e.OccurredAt }
