package markcopylost_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/features/command/markcopylost"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore/memoryengine"
	. "github.com/AntonStoeckl/library-circulation/testutil/fixtures" //nolint:revive
)

func Test_CommandHandler_Handle_ChargesTheCurrentBorrower(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	Seed(t, store, History(
		Title("t-1", Day0, "c-1"),
		Member("m-1", Day0),
		Lent("l-1", "c-1", "t-1", "m-1", Day0),
	))
	handler := markcopylost.NewCommandHandler(store, Policy())

	// act
	result, err := handler.Handle(context.Background(), markcopylost.BuildCommand("c-1", Day(16)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{
		core.LoanClosedEventType,
		core.FineAppliedEventType,
		core.FineAppliedEventType,
		core.CopyMarkedLostEventType,
	}, EventTypes(result.Events))

	for _, event := range result.Events {
		if fine, ok := event.(core.FineApplied); ok {
			assert.Equal(t, core.MemberIDString("m-1"), fine.MemberID)
		}
	}
}

func Test_CommandHandler_Handle_MarksShelvedCopyLost(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	Seed(t, store, Title("t-1", Day0, "c-1"))
	handler := markcopylost.NewCommandHandler(store, Policy())

	// act
	result, err := handler.Handle(context.Background(), markcopylost.BuildCommand("c-1", Day(1)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{core.CopyMarkedLostEventType}, EventTypes(result.Events))
}

func Test_CommandHandler_Handle_Fails_WhenCopyIsUnknown(t *testing.T) {
	// arrange
	handler := markcopylost.NewCommandHandler(memoryengine.NewEventStore(), Policy())

	// act
	_, err := handler.Handle(context.Background(), markcopylost.BuildCommand("c-404", Day0))

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)
}
