package titleavailability

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

// CopyInfo is one copy and its state name.
type CopyInfo struct {
	CopyID core.CopyIDString
	State  string
}

// QueueEntry is a Waiting reservation; Position starts at 1 for the head.
type QueueEntry struct {
	ReservationID core.ReservationIDString
	MemberID      core.MemberIDString
	Position      int
	PlacedAt      time.Time
}

// PickupEntry is a reservation holding a copy until PickupBy.
type PickupEntry struct {
	ReservationID core.ReservationIDString
	MemberID      core.MemberIDString
	CopyID        core.CopyIDString
	PickupBy      time.Time
}

// TitleAvailability is the query result.
type TitleAvailability struct {
	TitleID        core.TitleIDString
	ISBN           string
	Name           string
	Author         string
	TotalCopies    int
	Copies         []CopyInfo
	Counts         map[string]int // keyed by copy state name, every state present
	Queue          []QueueEntry
	ReadyForPickup []PickupEntry
	SequenceNumber uint
}

func (r TitleAvailability) GetSequenceNumber() uint {
	return r.SequenceNumber
}
