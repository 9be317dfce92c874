package boundary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/catalog"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	. "github.com/AntonStoeckl/library-circulation/testutil/fixtures" //nolint:revive
)

func lookupOf(props map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := props[key]
		return val, ok
	}
}

func Test_TitleOrMemberFilter_Matches(t *testing.T) {
	filter := boundary.TitleOrMemberFilter("t-1", "m-1")

	testCases := []struct {
		name      string
		eventType string
		props     map[string]string
		expected  bool
	}{
		{name: "same title", eventType: core.LoanOpenedEventType, props: map[string]string{core.PropTitleID: "t-1", core.PropMemberID: "m-9"}, expected: true},
		{name: "same member", eventType: core.FineAppliedEventType, props: map[string]string{core.PropTitleID: "t-9", core.PropMemberID: "m-1"}, expected: true},
		{name: "neither", eventType: core.LoanOpenedEventType, props: map[string]string{core.PropTitleID: "t-9", core.PropMemberID: "m-9"}, expected: false},
		{name: "unknown event type", eventType: "SomethingElse", props: map[string]string{core.PropTitleID: "t-1"}, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			matches := filter.Matches(tc.eventType, lookupOf(tc.props))

			// assert
			assert.Equal(t, tc.expected, matches)
		})
	}
}

func Test_Changes_HandOver_ActivatesTheQueueHead(t *testing.T) {
	// arrange
	state := boundary.Project(History(
		Title("t-1", Day0, "c-1"),
		Member("m-1", Day0),
		Member("m-2", Day0),
		Placed("r-1", "t-1", "m-1", Day0),
		Placed("r-2", "t-1", "m-2", Day(1)),
	))
	changes := state.Begin()

	// act
	changes.HandOver("t-1", "c-1", Day(2), Policy())

	// assert
	require.Equal(t, []string{core.ReservationReadyForPickupEventType}, EventTypes(changes.Events()))
	ready := changes.Events()[0].(core.ReservationReadyForPickup)
	assert.Equal(t, core.ReservationIDString("r-1"), ready.ReservationID)

	cp, ok := state.Catalog.Copy("c-1")
	require.True(t, ok)
	assert.Equal(t, catalog.CopyReservedPendingPickup, cp.State)
	assert.False(t, changes.Success().IsIdempotent())
}

func Test_Changes_Success_IsIdempotent_WhenNobodyWaits(t *testing.T) {
	// arrange
	state := boundary.Project(Title("t-1", Day0, "c-1"))
	changes := state.Begin()

	// act
	changes.HandOver("t-1", "c-1", Day(1), Policy())

	// assert
	assert.Empty(t, changes.Events())
	assert.True(t, changes.Success().IsIdempotent())
}
