// Package boundary assembles the decision state of one dynamic consistency boundary.
//
// A command handler queries every event matching the boundary's filter, projects it into a State
// and lets the feature's Decide function reason over catalog, membership, ledger and queue at once.
// Events a decision emits are applied to the State while it is being made, so a cascade
// (a returned copy handed to the next Waiting member, say) sees the effect of the step before it.
package boundary

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/catalog"
	"github.com/AntonStoeckl/library-circulation/circulation/ledger"
	"github.com/AntonStoeckl/library-circulation/circulation/membership"
	"github.com/AntonStoeckl/library-circulation/circulation/reservations"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// EventTypes lists every circulation event type.
var EventTypes = []string{
	core.TitleCataloguedEventType,
	core.CopyAddedToTitleEventType,
	core.CopyMarkedLostEventType,
	core.CopyFoundEventType,
	core.MemberRegisteredEventType,
	core.MemberSuspendedEventType,
	core.MemberReinstatedEventType,
	core.FineAppliedEventType,
	core.FineSettledEventType,
	core.LoanOpenedEventType,
	core.LoanRenewedEventType,
	core.LoanClosedEventType,
	core.ReservationPlacedEventType,
	core.ReservationReadyForPickupEventType,
	core.ReservationFulfilledEventType,
	core.ReservationExpiredEventType,
	core.ReservationCancelledEventType,
}

// ReservationEventTypes lists the events the reservation queue is projected from.
var ReservationEventTypes = []string{
	core.ReservationPlacedEventType,
	core.ReservationReadyForPickupEventType,
	core.ReservationFulfilledEventType,
	core.ReservationExpiredEventType,
	core.ReservationCancelledEventType,
}

// TitleFilter selects everything that happened to a title, its copies, loans and queue.
func TitleFilter(titleID core.TitleIDString) eventstore.Filter {
	return eventstore.NewFilter(
		eventstore.Types(EventTypes...).WhereAny(eventstore.P(core.PropTitleID, titleID)),
	)
}

// MemberFilter selects everything that happened to a member, their loans, fines and reservations.
func MemberFilter(memberID core.MemberIDString) eventstore.Filter {
	return eventstore.NewFilter(
		eventstore.Types(EventTypes...).WhereAny(eventstore.P(core.PropMemberID, memberID)),
	)
}

// TitleOrMemberFilter is the boundary of decisions that touch one title and one member.
func TitleOrMemberFilter(titleID core.TitleIDString, memberID core.MemberIDString) eventstore.Filter {
	return eventstore.NewFilter(
		eventstore.Types(EventTypes...).WhereAny(
			eventstore.P(core.PropTitleID, titleID),
			eventstore.P(core.PropMemberID, memberID),
		),
	)
}

// State is the projected decision state of one boundary.
type State struct {
	Catalog *catalog.Catalog
	Members *membership.Registry
	Loans   *ledger.Ledger
	Queue   *reservations.Queue
}

func New() *State {
	return &State{
		Catalog: catalog.New(),
		Members: membership.NewRegistry(),
		Loans:   ledger.New(),
		Queue:   reservations.NewQueue(),
	}
}

// Project builds the State from a history in sequence order.
func Project(history core.DomainEvents) *State {
	s := New()
	s.Apply(history...)

	return s
}

// Apply folds events into every projection.
func (s *State) Apply(events ...core.DomainEvent) {
	for _, e := range events {
		s.Catalog.Apply(e)
		s.Members.Apply(e)
		s.Loans.Apply(e)
		s.Queue.Apply(e)
	}
}

// Eligibility checks the member against their open loans at now.
func (s *State) Eligibility(member membership.Member, now time.Time, policy core.Policy) membership.Eligibility {
	return membership.CheckEligibility(member, ledger.FineBases(s.Loans.OpenLoansOf(member.ID)), now, policy)
}

// Changes collects the events of one decision and applies each one as it is recorded.
type Changes struct {
	state  *State
	events core.DomainEvents
}

// Begin starts recording a decision on the State.
func (s *State) Begin() *Changes {
	return &Changes{state: s}
}

// Record applies the events and keeps them for the decision result.
func (c *Changes) Record(events ...core.DomainEvent) {
	c.state.Apply(events...)
	c.events = append(c.events, events...)
}

// HandOver gives a copy that just became free to the head of the title's queue, if anyone waits.
func (c *Changes) HandOver(titleID core.TitleIDString, copyID core.CopyIDString, now time.Time, policy core.Policy) {
	if ready, ok := reservations.ActivateNext(c.state.Queue, titleID, copyID, now, policy); ok {
		c.Record(ready)
	}
}

// Events returns the recorded events in order.
func (c *Changes) Events() core.DomainEvents {
	return c.events
}

// Success turns the recorded events into a SuccessDecision, or an IdempotentDecision when nothing was recorded.
func (c *Changes) Success() core.DecisionResult {
	if len(c.events) == 0 {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(c.events[0], c.events[1:]...)
}
