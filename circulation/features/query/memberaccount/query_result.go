package memberaccount

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

type LoanInfo struct {
	LoanID       core.LoanIDString
	CopyID       core.CopyIDString
	TitleID      core.TitleIDString
	StartedAt    time.Time
	DueAt        time.Time
	RenewalCount int
	Overdue      bool
	AccruedFine  decimal.Decimal
}

type ReservationInfo struct {
	ReservationID core.ReservationIDString
	TitleID       core.TitleIDString
	State         string
	PlacedAt      time.Time
	CopyID        core.CopyIDString // ReadyForPickup only
	PickupBy      time.Time         // ReadyForPickup only
}

// MemberAccount is the query result.
type MemberAccount struct {
	MemberID            core.MemberIDString
	Name                string
	Status              string
	SuspensionReason    string
	Balance             decimal.Decimal
	Accruing            decimal.Decimal
	Eligible            bool
	IneligibilityReason core.IneligibilityReason
	OpenLoans           []LoanInfo
	Reservations        []ReservationInfo
	SequenceNumber      uint
}

func (r MemberAccount) GetSequenceNumber() uint {
	return r.SequenceNumber
}
