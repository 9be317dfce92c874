package renewloan

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "RenewLoan"

// Command represents a member asking to keep a copy for another loan period.
type Command struct {
	LoanID     core.LoanIDString `validate:"required"`
	OccurredAt core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(loanID string, occurredAt time.Time) Command {
	return Command{
		LoanID:     loanID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
