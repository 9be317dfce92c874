package suspendmember_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/features/command/reinstatemember"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/suspendmember"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	. "github.com/AntonStoeckl/library-circulation/testutil/fixtures" //nolint:revive
)

func Test_Decide_SuspendAndReinstate_RoundTrip(t *testing.T) {
	// arrange
	history := History(Member("m-1", Day(0)))

	// act
	suspended := suspendmember.Decide(history, suspendmember.BuildCommand("m-1", "unpaid fines", Day(1)))
	history = append(history, suspended.Events...)
	suspendedAgain := suspendmember.Decide(history, suspendmember.BuildCommand("m-1", "unpaid fines", Day(2)))
	reinstated := reinstatemember.Decide(history, reinstatemember.BuildCommand("m-1", Day(3)))
	history = append(history, reinstated.Events...)
	reinstatedAgain := reinstatemember.Decide(history, reinstatemember.BuildCommand("m-1", Day(4)))

	// assert
	require.NoError(t, suspended.HasError())
	assert.Equal(t, []string{core.MemberSuspendedEventType}, EventTypes(suspended.Events))
	assert.True(t, suspendedAgain.IsIdempotent())
	assert.Equal(t, []string{core.MemberReinstatedEventType}, EventTypes(reinstated.Events))
	assert.True(t, reinstatedAgain.IsIdempotent())
}

func Test_Decide_NotFound_WhenMemberIsUnknown(t *testing.T) {
	// act
	result := suspendmember.Decide(core.DomainEvents{}, suspendmember.BuildCommand("m-1", "x", Day(1)))

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrNotFound)
}
