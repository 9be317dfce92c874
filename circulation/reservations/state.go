package reservations

import (
	"fmt"
)

// State is the closed set of reservation states.
type State int

const (
	StateWaiting State = iota + 1
	StateReadyForPickup
	StateExpired
	StateCancelled
	StateFulfilled
)

var transitions = map[State][]State{
	StateWaiting:        {StateReadyForPickup, StateCancelled},
	StateReadyForPickup: {StateFulfilled, StateExpired, StateCancelled},
}

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "Waiting"
	case StateReadyForPickup:
		return "ReadyForPickup"
	case StateExpired:
		return "Expired"
	case StateCancelled:
		return "Cancelled"
	case StateFulfilled:
		return "Fulfilled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsActive reports whether the reservation still counts against the one-per-member-and-title rule.
func (s State) IsActive() bool {
	return s == StateWaiting || s == StateReadyForPickup
}

// CanBecome reports whether next is a legal successor of s.
func (s State) CanBecome(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}
