package registermember

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "RegisterMember"

// Command represents the intent to register a person as a library member.
type Command struct {
	MemberID   core.MemberIDString `validate:"required"`
	Name       string              `validate:"required"`
	OccurredAt core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(memberID, name string, occurredAt time.Time) Command {
	return Command{
		MemberID:   memberID,
		Name:       name,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
