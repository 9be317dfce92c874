package reinstatemember

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "ReinstateMember"

// Command represents the intent to lift a member's suspension.
type Command struct {
	MemberID   core.MemberIDString `validate:"required"`
	OccurredAt core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(memberID string, occurredAt time.Time) Command {
	return Command{
		MemberID:   memberID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
