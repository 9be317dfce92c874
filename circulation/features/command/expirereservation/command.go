package expirereservation

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "ExpireReservation"

// Command represents ending a reservation whose pickup window has elapsed.
type Command struct {
	ReservationID core.ReservationIDString `validate:"required"`
	OccurredAt    core.OccurredAt
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(reservationID string, occurredAt time.Time) Command {
	return Command{
		ReservationID: reservationID,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}
