package shell_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore/memoryengine"
)

func at(minutes int) time.Time {
	return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}

func givenStored(t *testing.T, store *memoryengine.EventStore, events ...core.DomainEvent) {
	t.Helper()

	for _, e := range events {
		storable, err := shell.StorableEventFrom(e, givenMetadata(t))
		require.NoError(t, err)

		_, maxSeq, err := store.Query(context.Background(), boundary.TitleFilter("unused"))
		require.NoError(t, err)
		require.NoError(t, store.Append(context.Background(), boundary.TitleFilter("unused"), maxSeq, storable))
	}
}

func Test_DecideAndAppend_AppendsAllEvents_WithSharedCausation(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	correlationID := uuid.New()
	ctx := shell.WithCorrelationID(context.Background(), correlationID)

	decide := func(history core.DomainEvents) core.DecisionResult {
		assert.Empty(t, history)

		return core.SuccessDecision(
			core.BuildTitleCatalogued("t-1", "isbn", "Name", "Author", at(0)),
			core.BuildCopyAddedToTitle("c-1", "t-1", at(0)),
		)
	}

	// act
	result, err := shell.DecideAndAppend(ctx, store, boundary.TitleFilter("t-1"), decide)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Len(t, result.Events, 2)
	assert.Equal(t, 1, result.RetryAttempts)

	stored := store.All()
	require.Len(t, stored, 2)

	first, err := shell.EventMetadataFrom(stored[0])
	require.NoError(t, err)
	second, err := shell.EventMetadataFrom(stored[1])
	require.NoError(t, err)

	assert.Equal(t, first.CausationID, second.CausationID)
	assert.NotEqual(t, first.MessageID, second.MessageID)
	assert.Equal(t, correlationID.String(), first.CorrelationID)
}

func Test_DecideAndAppend_AppendsNothing_WhenIdempotent(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	existing := core.BuildMemberRegistered("m-1", "Ada", at(0))
	givenStored(t, store, existing)

	decide := func(history core.DomainEvents) core.DecisionResult {
		return core.IdempotentDecision(history...)
	}

	// act
	result, err := shell.DecideAndAppend(context.Background(), store, boundary.MemberFilter("m-1"), decide)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Equal(t, core.DomainEvents{existing}, result.Events)
	assert.Len(t, store.All(), 1)
}

func Test_DecideAndAppend_AppendsAndFails_WhenDecisionCarriesEventsAndError(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	placed := core.BuildReservationPlaced("r-1", "t-1", "m-1", at(0))

	decide := func(_ core.DomainEvents) core.DecisionResult {
		return core.ErrorDecision(core.Unavailable("t-1"), placed)
	}

	// act
	result, err := shell.DecideAndAppend(context.Background(), store, boundary.TitleOrMemberFilter("t-1", "m-1"), decide)

	// assert
	assert.ErrorIs(t, err, core.ErrUnavailable)
	assert.Equal(t, core.DomainEvents{placed}, result.Events)
	assert.Len(t, store.All(), 1)
}

func Test_DecideAndAppend_Redecides_WhenBoundaryChangedConcurrently(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	calls := 0

	decide := func(history core.DomainEvents) core.DecisionResult {
		calls++

		if calls == 1 {
			// another writer gets in between query and append
			givenStored(t, store, core.BuildCopyAddedToTitle("c-0", "t-1", at(1)))
		}

		return core.SuccessDecision(core.BuildCopyAddedToTitle(uuid.NewString(), "t-1", at(2+len(history))))
	}

	// act
	result, err := shell.DecideAndAppend(
		context.Background(),
		store,
		boundary.TitleFilter("t-1"),
		decide,
		shell.WithBaseDelay(time.Millisecond),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, result.RetryAttempts)
	assert.Equal(t, "none", result.LastErrorType)
	assert.Len(t, store.All(), 2)
}

func Test_LookupLoan_ReturnsImmutableFacts(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	opened := core.BuildLoanOpened("l-1", "c-1", "t-1", "m-1", at(14*24*60), at(0))
	givenStored(t, store, core.BuildLoanOpened("l-2", "c-2", "t-2", "m-2", at(14*24*60), at(0)), opened)

	// act
	found, err := shell.LookupLoan(context.Background(), store, "l-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, opened, found)
}

func Test_Lookups_ReturnNotFound_WhenIDUnknown(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	ctx := context.Background()

	// act
	_, loanErr := shell.LookupLoan(ctx, store, "l-x")
	_, reservationErr := shell.LookupReservation(ctx, store, "r-x")
	_, copyErr := shell.LookupCopy(ctx, store, "c-x")

	// assert
	assert.ErrorIs(t, loanErr, core.ErrNotFound)
	assert.ErrorIs(t, reservationErr, core.ErrNotFound)
	assert.ErrorIs(t, copyErr, core.ErrNotFound)
}
