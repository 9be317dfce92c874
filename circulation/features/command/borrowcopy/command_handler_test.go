package borrowcopy_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/features/command/borrowcopy"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/memoryengine"
	. "github.com/AntonStoeckl/library-circulation/testutil/fixtures" //nolint:revive
)

// racingStore lets a competing command append right before the handler's first append.
type racingStore struct {
	*memoryengine.EventStore
	once       sync.Once
	competitor func()
}

func (s *racingStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expected eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	more ...eventstore.StorableEvent,
) error {
	s.once.Do(s.competitor)

	return s.EventStore.Append(ctx, filter, expected, event, more...)
}

func givenLibrary(t *testing.T, store shell.EventStore) {
	t.Helper()

	Seed(t, store, History(Title("t-1", Day0, "c-1"), Member("m-1", Day0), Member("m-2", Day0)))
}

func Test_CommandHandler_Handle_OpensLoan(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	givenLibrary(t, store)
	handler := borrowcopy.NewCommandHandler(store, Policy())

	// act
	result, err := handler.Handle(context.Background(), borrowcopy.BuildCommand("t-1", "m-1", "l-1", "r-1", Day(1)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{core.LoanOpenedEventType}, EventTypes(result.Events))
	assert.Equal(t, 1, result.RetryAttempts)
	assert.False(t, result.Idempotent)

	stored := store.All()
	assert.Equal(t, core.LoanOpenedEventType, stored[len(stored)-1].EventType)
}

func Test_CommandHandler_Handle_QueuesMember_WhenCompetitorTookTheLastCopy(t *testing.T) {
	// arrange
	inner := memoryengine.NewEventStore()
	givenLibrary(t, inner)

	store := &racingStore{EventStore: inner}
	store.competitor = func() {
		Seed(t, inner, History(Lent("l-2", "c-1", "t-1", "m-2", Day(1))))
	}

	handler := borrowcopy.NewCommandHandler(store, Policy(), borrowcopy.WithRetryOptions(shell.WithBaseDelay(0)))

	// act
	result, err := handler.Handle(context.Background(), borrowcopy.BuildCommand("t-1", "m-1", "l-1", "r-1", Day(1)))

	// assert
	require.ErrorIs(t, err, core.ErrUnavailable)
	assert.Equal(t, 2, result.RetryAttempts)
	assert.Equal(t, []string{core.ReservationPlacedEventType}, EventTypes(result.Events))
}

func Test_CommandHandler_Handle_RepeatedBorrowIsIdempotent(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	givenLibrary(t, store)
	handler := borrowcopy.NewCommandHandler(store, Policy())

	_, err := handler.Handle(context.Background(), borrowcopy.BuildCommand("t-1", "m-1", "l-1", "r-1", Day(1)))
	require.NoError(t, err)
	storedBefore := len(store.All())

	// act
	result, err := handler.Handle(context.Background(), borrowcopy.BuildCommand("t-1", "m-1", "l-9", "r-9", Day(2)))

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Len(t, store.All(), storedBefore)
}

func Test_CommandHandler_Handle_Fails_WhenCommandIsIncomplete(t *testing.T) {
	// arrange
	handler := borrowcopy.NewCommandHandler(memoryengine.NewEventStore(), Policy())

	// act
	_, err := handler.Handle(context.Background(), borrowcopy.BuildCommand("t-1", "", "l-1", "r-1", Day0))

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
