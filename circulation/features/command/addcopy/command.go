package addcopy

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "AddCopy"

// Command represents the intent to shelve one more physical copy of a title.
type Command struct {
	TitleID    core.TitleIDString `validate:"required"`
	CopyID     core.CopyIDString  `validate:"required"`
	OccurredAt core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(titleID, copyID string, occurredAt time.Time) Command {
	return Command{
		TitleID:    titleID,
		CopyID:     copyID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
