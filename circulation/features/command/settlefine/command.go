package settlefine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "SettleFine"

// Command represents a payment against the member's balance.
type Command struct {
	MemberID   core.MemberIDString `validate:"required"`
	Amount     decimal.Decimal
	OccurredAt core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(memberID string, amount decimal.Decimal, occurredAt time.Time) Command {
	return Command{
		MemberID:   memberID,
		Amount:     amount,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
