package markcopylost

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "MarkCopyLost"

// Command represents declaring a copy lost.
type Command struct {
	CopyID     core.CopyIDString `validate:"required"`
	OccurredAt core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(copyID string, occurredAt time.Time) Command {
	return Command{
		CopyID:     copyID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
