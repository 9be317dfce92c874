package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/catalog"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func givenCatalogWithCopies(t *testing.T, titleID string, copyIDs ...string) *catalog.Catalog {
	t.Helper()

	c := catalog.New()
	c.Apply(core.BuildTitleCatalogued(titleID, "978-0-00-000000-1", "Dune", "Frank Herbert", now))

	for _, id := range copyIDs {
		c.Apply(core.BuildCopyAddedToTitle(id, titleID, now))
	}

	return c
}

func Test_CopyState_Transitions(t *testing.T) {
	testCases := []struct {
		from  catalog.CopyState
		to    catalog.CopyState
		legal bool
	}{
		{from: catalog.CopyAvailable, to: catalog.CopyLent, legal: true},
		{from: catalog.CopyAvailable, to: catalog.CopyReservedPendingPickup, legal: true},
		{from: catalog.CopyAvailable, to: catalog.CopyLost, legal: true},
		{from: catalog.CopyAvailable, to: catalog.CopyAvailable, legal: false},
		{from: catalog.CopyLent, to: catalog.CopyLent, legal: false},
		{from: catalog.CopyLent, to: catalog.CopyAvailable, legal: true},
		{from: catalog.CopyLent, to: catalog.CopyReservedPendingPickup, legal: true},
		{from: catalog.CopyLent, to: catalog.CopyLost, legal: true},
		{from: catalog.CopyReservedPendingPickup, to: catalog.CopyLent, legal: true},
		{from: catalog.CopyReservedPendingPickup, to: catalog.CopyAvailable, legal: true},
		{from: catalog.CopyReservedPendingPickup, to: catalog.CopyLost, legal: false},
		{from: catalog.CopyLost, to: catalog.CopyLent, legal: false},
		{from: catalog.CopyLost, to: catalog.CopyAvailable, legal: true},
	}

	for _, tc := range testCases {
		t.Run(tc.from.String()+" to "+tc.to.String(), func(t *testing.T) {
			// act
			legal := tc.from.CanBecome(tc.to)

			// assert
			assert.Equal(t, tc.legal, legal)
		})
	}
}

func Test_Copy_MarkLent_FailsWithInvalidState_WhenAlreadyLent(t *testing.T) {
	// arrange
	cp := catalog.Copy{ID: "c-1", TitleID: "t-1", State: catalog.CopyLent}

	// act
	unchanged, err := cp.MarkLent()

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidState)
	assert.Equal(t, catalog.CopyLent, unchanged.State)
	assert.Contains(t, err.Error(), "c-1")
}

func Test_Copy_MarkLost_FailsWithInvalidState_WhenReservedPendingPickup(t *testing.T) {
	// arrange
	cp := catalog.Copy{ID: "c-1", TitleID: "t-1", State: catalog.CopyReservedPendingPickup}

	// act
	_, err := cp.MarkLost()

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func Test_Catalog_FindAvailableCopy_ReturnsFirstAvailableInCatalogueOrder(t *testing.T) {
	// arrange
	c := givenCatalogWithCopies(t, "t-1", "c-1", "c-2", "c-3")
	c.Apply(core.BuildLoanOpened("l-1", "c-1", "t-1", "m-1", now.AddDate(0, 0, 14), now))

	// act
	cp, found, err := c.FindAvailableCopy("t-1")

	// assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "c-2", cp.ID)
}

func Test_Catalog_FindAvailableCopy_ReturnsNone_WhenAllCopiesTaken(t *testing.T) {
	// arrange
	c := givenCatalogWithCopies(t, "t-1", "c-1")
	c.Apply(core.BuildLoanOpened("l-1", "c-1", "t-1", "m-1", now.AddDate(0, 0, 14), now))

	// act
	_, found, err := c.FindAvailableCopy("t-1")

	// assert
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Catalog_FindAvailableCopy_FailsWithNotFound_WhenTitleUnknown(t *testing.T) {
	// act
	_, _, err := catalog.New().FindAvailableCopy("t-404")

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_Catalog_Apply_TracksCopyLifecycle(t *testing.T) {
	// arrange
	c := givenCatalogWithCopies(t, "t-1", "c-1")

	steps := []struct {
		event    core.DomainEvent
		expected catalog.CopyState
	}{
		{event: core.BuildLoanOpened("l-1", "c-1", "t-1", "m-1", now, now), expected: catalog.CopyLent},
		{event: core.BuildLoanClosed("l-1", "c-1", "t-1", "m-1", false, now), expected: catalog.CopyAvailable},
		{event: core.BuildReservationReadyForPickup("r-1", "t-1", "m-2", "c-1", now, now), expected: catalog.CopyReservedPendingPickup},
		{event: core.BuildReservationExpired("r-1", "t-1", "m-2", "c-1", now), expected: catalog.CopyAvailable},
		{event: core.BuildReservationReadyForPickup("r-2", "t-1", "m-3", "c-1", now, now), expected: catalog.CopyReservedPendingPickup},
		{event: core.BuildReservationCancelled("r-2", "t-1", "m-3", "c-1", now), expected: catalog.CopyAvailable},
		{event: core.BuildLoanOpened("l-2", "c-1", "t-1", "m-1", now, now), expected: catalog.CopyLent},
		{event: core.BuildLoanClosed("l-2", "c-1", "t-1", "m-1", true, now), expected: catalog.CopyLent},
		{event: core.BuildCopyMarkedLost("c-1", "t-1", now), expected: catalog.CopyLost},
		{event: core.BuildCopyFound("c-1", "t-1", now), expected: catalog.CopyAvailable},
	}

	for _, step := range steps {
		// act
		c.Apply(step.event)

		// assert
		cp, ok := c.Copy("c-1")
		require.True(t, ok)
		assert.Equal(t, step.expected, cp.State, "after %s", step.event.IsEventType())
	}
}

func Test_Catalog_StateCounts_SumToTotalCopies(t *testing.T) {
	// arrange
	c := givenCatalogWithCopies(t, "t-1", "c-1", "c-2", "c-3", "c-4")
	c.Apply(core.BuildLoanOpened("l-1", "c-1", "t-1", "m-1", now, now))
	c.Apply(core.BuildReservationReadyForPickup("r-1", "t-1", "m-2", "c-2", now, now))
	c.Apply(core.BuildCopyMarkedLost("c-3", "t-1", now))

	// act
	counts := c.StateCounts("t-1")

	// assert
	title, ok := c.Title("t-1")
	require.True(t, ok)
	assert.Equal(t, 1, counts[catalog.CopyAvailable])
	assert.Equal(t, 1, counts[catalog.CopyLent])
	assert.Equal(t, 1, counts[catalog.CopyReservedPendingPickup])
	assert.Equal(t, 1, counts[catalog.CopyLost])
	assert.Equal(t, title.TotalCopies(),
		counts[catalog.CopyAvailable]+counts[catalog.CopyLent]+counts[catalog.CopyReservedPendingPickup]+counts[catalog.CopyLost])
}

func Test_Catalog_Apply_IgnoresCopiesOfUnknownTitlesAndDuplicates(t *testing.T) {
	// arrange
	c := givenCatalogWithCopies(t, "t-1", "c-1")

	// act
	c.Apply(core.BuildCopyAddedToTitle("c-9", "t-404", now))
	c.Apply(core.BuildCopyAddedToTitle("c-1", "t-1", now))

	// assert
	_, ok := c.Copy("c-9")
	assert.False(t, ok)

	title, _ := c.Title("t-1")
	assert.Equal(t, 1, title.TotalCopies())
}
