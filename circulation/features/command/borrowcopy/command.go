package borrowcopy

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "BorrowCopy"

// Command represents a member asking to borrow any copy of a title.
// LoanID names the loan if one is opened, ReservationID the reservation if the member has to queue.
type Command struct {
	TitleID       core.TitleIDString       `validate:"required"`
	MemberID      core.MemberIDString      `validate:"required"`
	LoanID        core.LoanIDString        `validate:"required"`
	ReservationID core.ReservationIDString `validate:"required"`
	OccurredAt    core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(titleID, memberID, loanID, reservationID string, occurredAt time.Time) Command {
	return Command{
		TitleID:       titleID,
		MemberID:      memberID,
		LoanID:        loanID,
		ReservationID: reservationID,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}
