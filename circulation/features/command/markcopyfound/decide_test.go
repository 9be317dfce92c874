package markcopyfound_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/features/command/markcopyfound"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	. "github.com/AntonStoeckl/library-circulation/testutil/fixtures" //nolint:revive
)

func givenLostCopy(t *testing.T) core.DomainEvents {
	t.Helper()

	return History(Title("t-1", Day(0), "c-1"), core.BuildCopyMarkedLost("c-1", "t-1", Day(1)))
}

func Test_Decide_Success_FoundCopyReturnsToShelf(t *testing.T) {
	// act
	result := markcopyfound.Decide(givenLostCopy(t), markcopyfound.BuildCommand("c-1", Day(2)), Policy())

	// assert
	require.NoError(t, result.HasError())
	assert.Equal(t, []string{core.CopyFoundEventType}, EventTypes(result.Events))
}

func Test_Decide_Success_FoundCopyGoesToQueueHead(t *testing.T) {
	// arrange
	history := History(givenLostCopy(t), Member("m-1", Day(0)), Placed("r-1", "t-1", "m-1", Day(1)))

	// act
	result := markcopyfound.Decide(history, markcopyfound.BuildCommand("c-1", Day(2)), Policy())

	// assert
	require.NoError(t, result.HasError())
	assert.Equal(t, []string{core.CopyFoundEventType, core.ReservationReadyForPickupEventType}, EventTypes(result.Events))
}

func Test_Decide_Idempotent_WhenCopyIsAvailable(t *testing.T) {
	// act
	result := markcopyfound.Decide(Title("t-1", Day(0), "c-1"), markcopyfound.BuildCommand("c-1", Day(2)), Policy())

	// assert
	assert.True(t, result.IsIdempotent())
}

func Test_Decide_InvalidState_WhenCopyIsLent(t *testing.T) {
	// arrange
	history := History(Title("t-1", Day(0), "c-1"), Member("m-1", Day(0)), Lent("l-1", "c-1", "t-1", "m-1", Day(0)))

	// act
	result := markcopyfound.Decide(history, markcopyfound.BuildCommand("c-1", Day(2)), Policy())

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidState)
}
