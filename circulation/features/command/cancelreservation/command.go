package cancelreservation

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const commandType = "CancelReservation"

// Command represents a member withdrawing a reservation.
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
