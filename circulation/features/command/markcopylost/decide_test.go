package markcopylost_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/catalog"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/markcopylost"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
	. "github.com/AntonStoeckl/library-circulation/testutil/fixtures" //nolint:revive
)

func givenLentCopy(t *testing.T) core.DomainEvents {
	t.Helper()

	return History(Title("t-1", Day(0), "c-1"), Member("m-1", Day(0)), Lent("l-1", "c-1", "t-1", "m-1", Day(0)))
}

func Test_Decide_Success_AvailableCopyIsMarkedLost(t *testing.T) {
	// act
	result := markcopylost.Decide(Title("t-1", Day(0), "c-1"), markcopylost.BuildCommand("c-1", Day(1)), "", Policy())

	// assert
	require.NoError(t, result.HasError())
	assert.Equal(t, []string{core.CopyMarkedLostEventType}, EventTypes(result.Events))
}

func Test_Decide_Success_LentCopyClosesLoanAndChargesBorrower(t *testing.T) {
	// arrange
	history := givenLentCopy(t)

	// act
	result := markcopylost.Decide(history, markcopylost.BuildCommand("c-1", Day(16)), "m-1", Policy())

	// assert
	require.NoError(t, result.HasError())
	require.Equal(t, []string{
		core.LoanClosedEventType,
		core.FineAppliedEventType,
		core.FineAppliedEventType,
		core.CopyMarkedLostEventType,
	}, EventTypes(result.Events))

	assert.True(t, result.Events[0].(core.LoanClosed).CopyLost)
	assert.Equal(t, core.FineReasonOverdue, result.Events[1].(core.FineApplied).Reason)
	assert.Equal(t, core.FineReasonLostCopy, result.Events[2].(core.FineApplied).Reason)

	state := boundary.Project(append(history, result.Events...))
	member, _ := state.Members.Member("m-1")
	assert.True(t, decimal.RequireFromString("26.00").Equal(member.Balance), "got %s", member.Balance)

	cp, _ := state.Catalog.Copy("c-1")
	assert.Equal(t, catalog.CopyLost, cp.State)
	assert.Empty(t, state.Loans.OpenLoansOf("m-1"))
}

func Test_Decide_BoundaryChanged_WhenBorrowerDiffersFromResolvedOne(t *testing.T) {
	// act
	result := markcopylost.Decide(givenLentCopy(t), markcopylost.BuildCommand("c-1", Day(1)), "m-2", Policy())

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrBoundaryChanged)
	assert.True(t, errors.Is(result.HasError(), eventstore.ErrConcurrencyConflict), "boundary changes are retried")
}

func Test_Decide_Idempotent_WhenAlreadyLost(t *testing.T) {
	// arrange
	history := History(Title("t-1", Day(0), "c-1"), core.BuildCopyMarkedLost("c-1", "t-1", Day(1)))

	// act
	result := markcopylost.Decide(history, markcopylost.BuildCommand("c-1", Day(2)), "", Policy())

	// assert
	assert.True(t, result.IsIdempotent())
}

func Test_Decide_InvalidState_WhenCopyAwaitsPickup(t *testing.T) {
	// arrange
	history := History(Title("t-1", Day(0), "c-1"), Member("m-1", Day(0)),
		Placed("r-1", "t-1", "m-1", Day(0)), Ready("r-1", "t-1", "m-1", "c-1", Day(0)))

	// act
	result := markcopylost.Decide(history, markcopylost.BuildCommand("c-1", Day(1)), "", Policy())

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidState)
}

func Test_CurrentBorrower(t *testing.T) {
	assert.Equal(t, "m-1", markcopylost.CurrentBorrower(givenLentCopy(t), "c-1"))
	assert.Empty(t, markcopylost.CurrentBorrower(Title("t-1", Day(0), "c-1"), "c-1"))
}
