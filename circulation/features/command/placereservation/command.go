package placereservation

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "PlaceReservation"

// Command represents a member joining the queue of a title.
type Command struct {
	ReservationID core.ReservationIDString `validate:"required"`
	TitleID       core.TitleIDString       `validate:"required"`
	MemberID      core.MemberIDString      `validate:"required"`
	OccurredAt    core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(reservationID, titleID, memberID string, occurredAt time.Time) Command {
	return Command{
		ReservationID: reservationID,
		TitleID:       titleID,
		MemberID:      memberID,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}
