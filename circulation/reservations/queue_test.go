package reservations_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/reservations"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

var now = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

func givenPolicy() core.Policy {
	return core.Policy{PickupWindow: 72 * time.Hour}
}

func givenQueue(t *testing.T, placements ...[2]string) *reservations.Queue {
	t.Helper()

	q := reservations.NewQueue()
	for i, p := range placements {
		q.Apply(core.BuildReservationPlaced(p[0], "t-1", p[1], now.Add(time.Duration(i)*time.Minute)))
	}

	return q
}

func Test_Queue_Position_IsDerivedFromPlacementOrder(t *testing.T) {
	// arrange
	q := givenQueue(t, [2]string{"r-1", "m-1"}, [2]string{"r-2", "m-2"}, [2]string{"r-3", "m-3"})

	// act
	q.Apply(core.BuildReservationCancelled("r-1", "t-1", "m-1", "", now))

	// assert
	assert.Equal(t, 0, q.Position("r-1"))
	assert.Equal(t, 1, q.Position("r-2"))
	assert.Equal(t, 2, q.Position("r-3"))
	assert.Equal(t, 0, q.Position("r-404"))
}

func Test_ActivateNext_IsStrictFIFO(t *testing.T) {
	// arrange
	q := givenQueue(t, [2]string{"r-1", "m-1"}, [2]string{"r-2", "m-2"}, [2]string{"r-3", "m-3"})
	activated := make([]string, 0, 3)

	// act
	for i, copyID := range []string{"c-1", "c-2", "c-3"} {
		ready, ok := reservations.ActivateNext(q, "t-1", copyID, now.Add(time.Duration(i)*time.Hour), givenPolicy())
		require.True(t, ok)
		q.Apply(ready)
		activated = append(activated, ready.ReservationID)
	}

	_, more := reservations.ActivateNext(q, "t-1", "c-4", now, givenPolicy())

	// assert
	assert.Equal(t, []string{"r-1", "r-2", "r-3"}, activated)
	assert.False(t, more)
}

func Test_ActivateNext_SetsPickupWindow(t *testing.T) {
	// arrange
	q := givenQueue(t, [2]string{"r-1", "m-1"})

	// act
	ready, ok := reservations.ActivateNext(q, "t-1", "c-1", now, givenPolicy())
	q.Apply(ready)

	// assert
	require.True(t, ok)
	r, _ := q.Reservation("r-1")
	assert.Equal(t, reservations.StateReadyForPickup, r.State)
	assert.Equal(t, "c-1", r.CopyID)
	assert.Equal(t, now.Add(72*time.Hour), r.PickupBy)
}

func Test_Reservation_Expire(t *testing.T) {
	// arrange
	q := givenQueue(t, [2]string{"r-1", "m-1"}, [2]string{"r-2", "m-2"})
	q.Apply(core.BuildReservationReadyForPickup("r-1", "t-1", "m-1", "c-1", now.Add(time.Hour), now))
	ready, _ := q.Reservation("r-1")
	waiting, _ := q.Reservation("r-2")

	// act + assert
	assert.ErrorIs(t, ready.Expire(now), core.ErrInvalidState, "window still open")
	assert.NoError(t, ready.Expire(now.Add(time.Hour)))
	assert.ErrorIs(t, waiting.Expire(now.Add(time.Hour)), core.ErrInvalidState)
}

func Test_State_Transitions(t *testing.T) {
	testCases := []struct {
		from  reservations.State
		to    reservations.State
		legal bool
	}{
		{from: reservations.StateWaiting, to: reservations.StateReadyForPickup, legal: true},
		{from: reservations.StateWaiting, to: reservations.StateCancelled, legal: true},
		{from: reservations.StateWaiting, to: reservations.StateExpired, legal: false},
		{from: reservations.StateWaiting, to: reservations.StateFulfilled, legal: false},
		{from: reservations.StateReadyForPickup, to: reservations.StateFulfilled, legal: true},
		{from: reservations.StateReadyForPickup, to: reservations.StateExpired, legal: true},
		{from: reservations.StateReadyForPickup, to: reservations.StateCancelled, legal: true},
		{from: reservations.StateExpired, to: reservations.StateCancelled, legal: false},
		{from: reservations.StateCancelled, to: reservations.StateWaiting, legal: false},
		{from: reservations.StateFulfilled, to: reservations.StateCancelled, legal: false},
	}

	for _, tc := range testCases {
		t.Run(tc.from.String()+" to "+tc.to.String(), func(t *testing.T) {
			// act + assert
			assert.Equal(t, tc.legal, tc.from.CanBecome(tc.to))
		})
	}
}

func Test_Queue_Lookups(t *testing.T) {
	// arrange
	q := givenQueue(t, [2]string{"r-1", "m-1"}, [2]string{"r-2", "m-2"})
	q.Apply(core.BuildReservationReadyForPickup("r-1", "t-1", "m-1", "c-1", now, now))

	// act
	_, m1Ready := q.ReadyFor("m-1", "t-1")
	_, m2Ready := q.ReadyFor("m-2", "t-1")
	m2Active, m2HasActive := q.ActiveFor("m-2", "t-1")
	expired := q.ExpiredPickups(now)

	// assert
	assert.True(t, m1Ready)
	assert.False(t, m2Ready)
	assert.True(t, m2HasActive)
	assert.Equal(t, "r-2", m2Active.ID)
	assert.True(t, q.HasWaiting("t-1"))
	require.Len(t, expired, 1)
	assert.Equal(t, "r-1", expired[0].ID)
	assert.Len(t, q.ActiveOf("m-1"), 1)
}
