package membership

import (
	"fmt"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

// Status is the closed set of member states.
type Status int

const (
	StatusActive Status = iota + 1
	StatusSuspended
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusSuspended:
		return "Suspended"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Suspend moves an Active member to Suspended.
func (s Status) Suspend() (Status, error) {
	if s != StatusActive {
		return s, core.InvalidState(core.EntityMember, "", "only an active member can be suspended")
	}

	return StatusSuspended, nil
}

// Reinstate moves a Suspended member back to Active.
func (s Status) Reinstate() (Status, error) {
	if s != StatusSuspended {
		return s, core.InvalidState(core.EntityMember, "", "only a suspended member can be reinstated")
	}

	return StatusActive, nil
}
