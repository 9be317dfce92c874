package cataloguetitle

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "CatalogueTitle"

// Command represents the intent to add a title to the catalogue.
type Command struct {
	TitleID    core.TitleIDString `validate:"required"`
	ISBN       string             `validate:"required,max=32"`
	Name       string             `validate:"required"`
	Author     string             `validate:"required"`
	OccurredAt core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(titleID, isbn, name, author string, occurredAt time.Time) Command {
	return Command{
		TitleID:    titleID,
		ISBN:       isbn,
		Name:       name,
		Author:     author,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
