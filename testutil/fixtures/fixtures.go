package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/engine"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/memoryengine"
)

// Day0 is the instant fixture histories start at.
var Day0 = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

// Day returns Day0 plus n days.
func Day(n int) time.Time {
	return Day0.AddDate(0, 0, n)
}

// Policy is a small library: 14 day loans, 0.50 per day, threshold 10.00, 3 day pickup window.
func Policy() core.Policy {
	return core.Policy{
		LoanPeriod:          14 * 24 * time.Hour,
		RenewalCap:          2,
		DailyFineRate:       decimal.RequireFromString("0.50"),
		CurrencyPrecision:   2,
		PickupWindow:        3 * 24 * time.Hour,
		SuspensionThreshold: decimal.RequireFromString("10.00"),
		MaxOpenLoans:        3,
		LostCopyFee:         decimal.RequireFromString("25.00"),
	}
}

// Title catalogues a title and adds the copies in order.
func Title(titleID core.TitleIDString, at time.Time, copyIDs ...core.CopyIDString) core.DomainEvents {
	events := core.DomainEvents{core.BuildTitleCatalogued(titleID, "978-0-00-000000-"+titleID, "Title "+titleID, "Author", at)}
	for _, copyID := range copyIDs {
		events = append(events, core.BuildCopyAddedToTitle(copyID, titleID, at))
	}

	return events
}

func Member(memberID core.MemberIDString, at time.Time) core.DomainEvent {
	return core.BuildMemberRegistered(memberID, "Member "+memberID, at)
}

// Lent opens a loan due one loan period after at.
func Lent(loanID core.LoanIDString, copyID core.CopyIDString, titleID core.TitleIDString, memberID core.MemberIDString, at time.Time) core.DomainEvent {
	return core.BuildLoanOpened(loanID, copyID, titleID, memberID, at.Add(Policy().LoanPeriod), at)
}

func Placed(reservationID core.ReservationIDString, titleID core.TitleIDString, memberID core.MemberIDString, at time.Time) core.DomainEvent {
	return core.BuildReservationPlaced(reservationID, titleID, memberID, at)
}

// Ready activates a reservation with the copy; the pickup window starts at at.
func Ready(reservationID core.ReservationIDString, titleID core.TitleIDString, memberID core.MemberIDString, copyID core.CopyIDString, at time.Time) core.DomainEvent {
	return core.BuildReservationReadyForPickup(reservationID, titleID, memberID, copyID, at.Add(Policy().PickupWindow), at)
}

func Fine(memberID core.MemberIDString, amount string, at time.Time) core.DomainEvent {
	return core.BuildFineApplied(memberID, "", "", decimal.RequireFromString(amount), core.FineReasonManual, at)
}

// History concatenates events and event slices in the given order.
func History(parts ...any) core.DomainEvents {
	history := core.DomainEvents{}

	for _, part := range parts {
		switch p := part.(type) {
		case core.DomainEvent:
			history = append(history, p)
		case core.DomainEvents:
			history = append(history, p...)
		}
	}

	return history
}

// EventTypes lists the types of the events in order.
func EventTypes(events core.DomainEvents) []string {
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.IsEventType())
	}

	return types
}

// Environment is an engine on a fresh in-memory store.
type Environment struct {
	Engine *engine.Engine
	Store  *memoryengine.EventStore
	Clock  *engine.FixedClock
}

// NewEngine returns an Environment with Policy, a clock standing at Day0 and random UUIDs.
func NewEngine(t *testing.T, opts ...engine.Option) Environment {
	t.Helper()

	return NewEngineWithPolicy(t, Policy(), opts...)
}

func NewEngineWithPolicy(t *testing.T, policy core.Policy, opts ...engine.Option) Environment {
	t.Helper()

	store := memoryengine.NewEventStore()
	clock := engine.NewFixedClock(Day0)

	allOpts := append([]engine.Option{
		engine.WithClock(clock),
		engine.WithRetryOptions(shell.WithBaseDelay(200*time.Microsecond), shell.WithMaxAttempts(16)),
	}, opts...)

	e, err := engine.New(store, policy, allOpts...)
	require.NoError(t, err)

	return Environment{Engine: e, Store: store, Clock: clock}
}

// Seed appends the history to the store unconditionally, as one command would.
func Seed(t *testing.T, store shell.EventStore, history core.DomainEvents) {
	t.Helper()
	require.NotEmpty(t, history)

	commandID := uuid.New()
	storable := make(eventstore.StorableEvents, 0, len(history))

	for _, e := range history {
		event, err := shell.StorableEventFrom(e, shell.BuildEventMetadata(uuid.New(), commandID, commandID))
		require.NoError(t, err)

		storable = append(storable, event)
	}

	ctx := context.Background()
	everything := eventstore.NewFilter()

	_, maxSequence, err := store.Query(ctx, everything)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, everything, maxSequence, storable[0], storable[1:]...))
}
