// Package reservations owns the per-title FIFO reservation queues.
//
// Queue positions are never stored. A Waiting reservation's position is its rank among the title's
// Waiting reservations in the order they were placed, so nothing has to be renumbered when
// the head is activated or someone cancels.
package reservations

import (
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

// Reservation is the projected state of one reservation.
// CopyID and PickupBy are set from ReadyForPickup on.
type Reservation struct {
	ID       core.ReservationIDString
	TitleID  core.TitleIDString
	MemberID core.MemberIDString
	PlacedAt time.Time
	State    State
	CopyID   core.CopyIDString
	PickupBy time.Time
}

// Activate validates Waiting → ReadyForPickup.
func (r Reservation) Activate() error { return r.check(StateReadyForPickup) }

// Fulfil validates ReadyForPickup → Fulfilled.
func (r Reservation) Fulfil() error { return r.check(StateFulfilled) }

// Cancel validates Waiting|ReadyForPickup → Cancelled.
func (r Reservation) Cancel() error { return r.check(StateCancelled) }

// Expire validates ReadyForPickup → Expired once the pickup window has elapsed at now.
func (r Reservation) Expire(now time.Time) error {
	if err := r.check(StateExpired); err != nil {
		return err
	}

	if now.Before(r.PickupBy) {
		return core.InvalidState(core.EntityReservation, r.ID, "pickup window open until "+r.PickupBy.Format(time.RFC3339))
	}

	return nil
}

func (r Reservation) check(next State) error {
	if !r.State.CanBecome(next) {
		return core.InvalidState(core.EntityReservation, r.ID, fmt.Sprintf("cannot go from %s to %s", r.State, next))
	}

	return nil
}

// Queue is the projected state of all reservations seen in a history.
type Queue struct {
	reservations map[core.ReservationIDString]*Reservation
	order        []core.ReservationIDString
}

func NewQueue() *Queue {
	return &Queue{reservations: make(map[core.ReservationIDString]*Reservation)}
}

// Apply folds one event into the queue.
func (q *Queue) Apply(event core.DomainEvent) {
	switch e := event.(type) {
	case core.ReservationPlaced:
		if _, ok := q.reservations[e.ReservationID]; ok {
			return
		}

		q.reservations[e.ReservationID] = &Reservation{
			ID:       e.ReservationID,
			TitleID:  e.TitleID,
			MemberID: e.MemberID,
			PlacedAt: e.OccurredAt,
			State:    StateWaiting,
		}
		q.order = append(q.order, e.ReservationID)

	case core.ReservationReadyForPickup:
		if r, ok := q.reservations[e.ReservationID]; ok {
			r.State = StateReadyForPickup
			r.CopyID = e.CopyID
			r.PickupBy = e.PickupBy
		}

	case core.ReservationFulfilled:
		q.set(e.ReservationID, StateFulfilled)

	case core.ReservationExpired:
		q.set(e.ReservationID, StateExpired)

	case core.ReservationCancelled:
		q.set(e.ReservationID, StateCancelled)
	}
}

func (q *Queue) set(reservationID core.ReservationIDString, state State) {
	if r, ok := q.reservations[reservationID]; ok {
		r.State = state
	}
}

// Reservation returns a snapshot of one reservation.
func (q *Queue) Reservation(reservationID core.ReservationIDString) (Reservation, bool) {
	r, ok := q.reservations[reservationID]
	if !ok {
		return Reservation{}, false
	}

	return *r, true
}

// Waiting returns the title's Waiting reservations, head first.
func (q *Queue) Waiting(titleID core.TitleIDString) []Reservation {
	return q.where(func(r *Reservation) bool { return r.TitleID == titleID && r.State == StateWaiting })
}

// Head returns the oldest Waiting reservation of the title.
func (q *Queue) Head(titleID core.TitleIDString) (Reservation, bool) {
	waiting := q.Waiting(titleID)
	if len(waiting) == 0 {
		return Reservation{}, false
	}

	return waiting[0], true
}

// HasWaiting reports whether anyone waits for the title.
func (q *Queue) HasWaiting(titleID core.TitleIDString) bool {
	_, ok := q.Head(titleID)
	return ok
}

// Position returns the 1-based queue position of a Waiting reservation, 0 for any other state.
func (q *Queue) Position(reservationID core.ReservationIDString) int {
	r, ok := q.reservations[reservationID]
	if !ok || r.State != StateWaiting {
		return 0
	}

	for i, w := range q.Waiting(r.TitleID) {
		if w.ID == reservationID {
			return i + 1
		}
	}

	return 0
}

// ActiveFor returns the member's Waiting or ReadyForPickup reservation on the title.
func (q *Queue) ActiveFor(memberID core.MemberIDString, titleID core.TitleIDString) (Reservation, bool) {
	active := q.where(func(r *Reservation) bool {
		return r.MemberID == memberID && r.TitleID == titleID && r.State.IsActive()
	})

	if len(active) == 0 {
		return Reservation{}, false
	}

	return active[0], true
}

// ActiveOf returns all of the member's active reservations in the order they were placed.
func (q *Queue) ActiveOf(memberID core.MemberIDString) []Reservation {
	return q.where(func(r *Reservation) bool { return r.MemberID == memberID && r.State.IsActive() })
}

// ReadyFor returns the member's ReadyForPickup reservation on the title.
func (q *Queue) ReadyFor(memberID core.MemberIDString, titleID core.TitleIDString) (Reservation, bool) {
	r, ok := q.ActiveFor(memberID, titleID)
	if !ok || r.State != StateReadyForPickup {
		return Reservation{}, false
	}

	return r, true
}

// Ready returns the title's ReadyForPickup reservations in the order they were placed.
func (q *Queue) Ready(titleID core.TitleIDString) []Reservation {
	return q.where(func(r *Reservation) bool { return r.TitleID == titleID && r.State == StateReadyForPickup })
}

// ExpiredPickups returns ReadyForPickup reservations whose pickup window has elapsed at now.
func (q *Queue) ExpiredPickups(now time.Time) []Reservation {
	return q.where(func(r *Reservation) bool {
		return r.State == StateReadyForPickup && !now.Before(r.PickupBy)
	})
}

func (q *Queue) where(match func(*Reservation) bool) []Reservation {
	out := make([]Reservation, 0)

	for _, id := range q.order {
		if r := q.reservations[id]; match(r) {
			out = append(out, *r)
		}
	}

	return out
}

// ActivateNext hands copyID to the head of the title's queue.
// It returns false when nobody waits; the copy then simply stays Available.
func ActivateNext(
	q *Queue,
	titleID core.TitleIDString,
	copyID core.CopyIDString,
	now time.Time,
	policy core.Policy,
) (core.ReservationReadyForPickup, bool) {
	head, ok := q.Head(titleID)
	if !ok {
		return core.ReservationReadyForPickup{}, false
	}

	return core.BuildReservationReadyForPickup(head.ID, titleID, head.MemberID, copyID, now.Add(policy.PickupWindow), now), true
}
