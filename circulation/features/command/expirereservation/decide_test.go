package expirereservation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/catalog"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/expirereservation"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	. "github.com/AntonStoeckl/library-circulation/testutil/fixtures" //nolint:revive
)

// r-1 is ready from day 2, its pickup window closes on day 5.
func givenReadyReservation(t *testing.T) core.DomainEvents {
	t.Helper()

	return History(
		Title("t-1", Day(0), "c-1"),
		Member("m-1", Day(0)),
		Placed("r-1", "t-1", "m-1", Day(2)),
		Ready("r-1", "t-1", "m-1", "c-1", Day(2)),
	)
}

func Test_Decide_Success_CopyBecomesAvailable_WhenNobodyWaits(t *testing.T) {
	// arrange
	history := givenReadyReservation(t)

	// act
	result := expirereservation.Decide(history, expirereservation.BuildCommand("r-1", Day(5)), Policy())

	// assert
	require.NoError(t, result.HasError())
	assert.Equal(t, []string{core.ReservationExpiredEventType}, EventTypes(result.Events))

	cp, _ := boundary.Project(append(history, result.Events...)).Catalog.Copy("c-1")
	assert.Equal(t, catalog.CopyAvailable, cp.State)
}

func Test_Decide_Success_CopyGoesToNextWaiting(t *testing.T) {
	// arrange
	history := History(givenReadyReservation(t), Member("m-2", Day(0)), Placed("r-2", "t-1", "m-2", Day(3)))

	// act
	result := expirereservation.Decide(history, expirereservation.BuildCommand("r-1", Day(6)), Policy())

	// assert
	require.NoError(t, result.HasError())
	require.Equal(t, []string{core.ReservationExpiredEventType, core.ReservationReadyForPickupEventType}, EventTypes(result.Events))
	assert.Equal(t, "r-2", result.Events[1].(core.ReservationReadyForPickup).ReservationID)
	assert.Equal(t, Day(9), result.Events[1].(core.ReservationReadyForPickup).PickupBy)
}

func Test_Decide_InvalidState_WhilePickupWindowIsOpen(t *testing.T) {
	// act
	result := expirereservation.Decide(givenReadyReservation(t), expirereservation.BuildCommand("r-1", Day(4)), Policy())

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidState)
	assert.Empty(t, result.Events)
}

func Test_Decide_Idempotent_WhenAlreadyExpired(t *testing.T) {
	// arrange
	history := History(givenReadyReservation(t), core.BuildReservationExpired("r-1", "t-1", "m-1", "c-1", Day(5)))

	// act
	result := expirereservation.Decide(history, expirereservation.BuildCommand("r-1", Day(6)), Policy())

	// assert
	assert.True(t, result.IsIdempotent())
}

func Test_Decide_InvalidState_WhenStillWaiting(t *testing.T) {
	// arrange
	history := History(Title("t-1", Day(0)), Member("m-1", Day(0)), Placed("r-1", "t-1", "m-1", Day(0)))

	// act
	result := expirereservation.Decide(history, expirereservation.BuildCommand("r-1", Day(9)), Policy())

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidState)
}
