package suspendmember

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "SuspendMember"

// Command represents the intent to bar a member from borrowing.
type Command struct {
	MemberID   core.MemberIDString `validate:"required"`
	Reason     string              `validate:"required"`
	OccurredAt core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(memberID, reason string, occurredAt time.Time) Command {
	return Command{
		MemberID:   memberID,
		Reason:     reason,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
