package expiredpickups

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

type ExpiredPickup struct {
	ReservationID core.ReservationIDString
	TitleID       core.TitleIDString
	MemberID      core.MemberIDString
	CopyID        core.CopyIDString
	PickupBy      time.Time
}

// ExpiredPickups is the query result, oldest reservation first.
type ExpiredPickups struct {
	Reservations   []ExpiredPickup
	Count          int
	SequenceNumber uint
}

func (r ExpiredPickups) GetSequenceNumber() uint {
	return r.SequenceNumber
}
