package markcopyfound

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "MarkCopyFound"

// Command represents putting a lost copy back on the shelf.
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
