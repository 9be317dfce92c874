package catalog

import (
	"fmt"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

// CopyState is the closed set of states a physical copy can be in.
type CopyState int

const (
	CopyAvailable CopyState = iota + 1
	CopyLent
	CopyReservedPendingPickup
	CopyLost
)

// AllCopyStates lists every state in display order.
var AllCopyStates = []CopyState{CopyAvailable, CopyLent, CopyReservedPendingPickup, CopyLost}

var copyTransitions = map[CopyState][]CopyState{
	CopyAvailable:             {CopyLent, CopyReservedPendingPickup, CopyLost},
	CopyLent:                  {CopyAvailable, CopyReservedPendingPickup, CopyLost},
	CopyReservedPendingPickup: {CopyLent, CopyAvailable},
	CopyLost:                  {CopyAvailable},
}

func (s CopyState) String() string {
	switch s {
	case CopyAvailable:
		return "Available"
	case CopyLent:
		return "Lent"
	case CopyReservedPendingPickup:
		return "ReservedPendingPickup"
	case CopyLost:
		return "Lost"
	default:
		return fmt.Sprintf("CopyState(%d)", int(s))
	}
}

// CanBecome reports whether next is a legal successor of s.
func (s CopyState) CanBecome(next CopyState) bool {
	for _, allowed := range copyTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Copy is one physical copy of a title.
type Copy struct {
	ID      core.CopyIDString
	TitleID core.TitleIDString
	State   CopyState
}

// MarkLent lends an Available copy, or the copy earmarked for a reservation.
func (c Copy) MarkLent() (Copy, error) {
	return c.moveTo(CopyLent)
}

// MarkAvailable puts a returned, released or found copy back on the shelf.
func (c Copy) MarkAvailable() (Copy, error) {
	return c.moveTo(CopyAvailable)
}

// MarkReserved earmarks the copy for the head of the title's queue.
func (c Copy) MarkReserved() (Copy, error) {
	return c.moveTo(CopyReservedPendingPickup)
}

// MarkLost declares an Available or Lent copy lost.
func (c Copy) MarkLost() (Copy, error) {
	return c.moveTo(CopyLost)
}

func (c Copy) moveTo(next CopyState) (Copy, error) {
	if !c.State.CanBecome(next) {
		return c, core.InvalidState(core.EntityCopy, c.ID, fmt.Sprintf("cannot go from %s to %s", c.State, next))
	}

	c.State = next

	return c, nil
}
