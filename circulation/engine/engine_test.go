package engine_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-circulation/circulation/engine"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
	"github.com/AntonStoeckl/library-circulation/testutil/fixtures"
	"github.com/AntonStoeckl/library-circulation/testutil/observability/testdoubles"
)

func givenTitleWithCopies(t *testing.T, env fixtures.Environment, titleID core.TitleIDString, copies int) []core.CopyIDString {
	t.Helper()
	ctx := context.Background()

	_, err := env.Engine.CatalogueTitle(ctx, engine.TitleDetails{TitleID: titleID, ISBN: "978-3-16-148410-0", Name: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	copyIDs := make([]core.CopyIDString, 0, copies)
	for range copies {
		copyID, err := env.Engine.AddCopy(ctx, titleID, "")
		require.NoError(t, err)
		copyIDs = append(copyIDs, copyID)
	}

	return copyIDs
}

func givenMembers(t *testing.T, env fixtures.Environment, memberIDs ...core.MemberIDString) {
	t.Helper()

	for _, memberID := range memberIDs {
		_, err := env.Engine.RegisterMember(context.Background(), memberID, "Member "+memberID)
		require.NoError(t, err)
	}
}

func givenLoan(t *testing.T, env fixtures.Environment, memberID core.MemberIDString, titleID core.TitleIDString) engine.LoanReceipt {
	t.Helper()

	receipt, err := env.Engine.Borrow(context.Background(), memberID, titleID)
	require.NoError(t, err)
	require.NotNil(t, receipt.Loan)

	return *receipt.Loan
}

func givenWaiting(t *testing.T, env fixtures.Environment, memberID core.MemberIDString, titleID core.TitleIDString) engine.ReservationReceipt {
	t.Helper()

	receipt, err := env.Engine.Enqueue(context.Background(), memberID, titleID)
	require.NoError(t, err)
	require.Equal(t, "Waiting", receipt.State)

	return receipt
}

func assertCopyCountsAddUp(t *testing.T, env fixtures.Environment, titleID core.TitleIDString) {
	t.Helper()

	availability, err := env.Engine.TitleAvailability(context.Background(), titleID)
	require.NoError(t, err)

	sum := 0
	for _, count := range availability.Counts {
		sum += count
	}

	assert.Equal(t, availability.TotalCopies, sum)
}

func Test_New_Fails_WhenEventStoreIsNil(t *testing.T) {
	// act
	_, err := engine.New(nil, fixtures.Policy())

	// assert
	assert.ErrorIs(t, err, engine.ErrNilEventStore)
}

//nolint:funlen
func Test_Engine_LateReturn_HandsCopyToQueue_AndExpiryFreesIt(t *testing.T) {
	// arrange
	policy := fixtures.Policy()
	policy.LoanPeriod = 10 * 24 * time.Hour
	policy.DailyFineRate = decimal.NewFromInt(100)
	policy.SuspensionThreshold = decimal.NewFromInt(1000)

	env := fixtures.NewEngineWithPolicy(t, policy)
	ctx := context.Background()
	givenTitleWithCopies(t, env, "t-1", 1)
	givenMembers(t, env, "m-1", "m-2")
	loan := givenLoan(t, env, "m-1", "t-1")
	assert.Equal(t, fixtures.Day(10), loan.DueAt)

	// act: the copy is out, m-2 is queued
	env.Clock.Set(fixtures.Day(5))
	borrowed, err := env.Engine.Borrow(ctx, "m-2", "t-1")

	// assert
	require.ErrorIs(t, err, core.ErrUnavailable)
	require.Nil(t, borrowed.Loan)
	require.NotNil(t, borrowed.Reservation)
	assert.Equal(t, "Waiting", borrowed.Reservation.State)
	assert.Equal(t, 1, borrowed.Reservation.Position)

	// act: two days late
	env.Clock.Set(fixtures.Day(12))
	returned, err := env.Engine.Return(ctx, loan.LoanID)

	// assert
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(returned.Fine), "fine was %s", returned.Fine)
	assert.Equal(t, borrowed.Reservation.ReservationID, returned.HandedTo)

	availability, err := env.Engine.TitleAvailability(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, availability.Counts["ReservedPendingPickup"])
	require.Len(t, availability.ReadyForPickup, 1)
	assert.Equal(t, core.MemberIDString("m-2"), availability.ReadyForPickup[0].MemberID)
	assert.Equal(t, fixtures.Day(15), availability.ReadyForPickup[0].PickupBy)
	assert.Empty(t, availability.Queue)

	account, err := env.Engine.MemberAccount(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(account.Balance))

	// act: the pickup window passes
	env.Clock.Set(fixtures.Day(15))
	expired, err := env.Engine.ExpiredPickups(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, expired.Count)

	released, err := env.Engine.Expire(ctx, expired.Reservations[0].ReservationID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, returned.CopyID, released.CopyID)
	assert.Empty(t, released.HandedTo)

	availability, err = env.Engine.TitleAvailability(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, availability.Counts["Available"])
	assert.Empty(t, availability.ReadyForPickup)
}

func borrowConcurrently(t *testing.T, env fixtures.Environment, titleID core.TitleIDString, memberIDs ...core.MemberIDString) (loans, queued int32) {
	t.Helper()

	var loanCount, queuedCount atomic.Int32
	group, ctx := errgroup.WithContext(context.Background())

	for _, memberID := range memberIDs {
		group.Go(func() error {
			receipt, err := env.Engine.Borrow(ctx, memberID, titleID)

			switch {
			case err == nil && receipt.Loan != nil:
				loanCount.Add(1)
			case errors.Is(err, core.ErrUnavailable) && receipt.Reservation != nil:
				queuedCount.Add(1)
			default:
				return err
			}

			return nil
		})
	}

	require.NoError(t, group.Wait())

	return loanCount.Load(), queuedCount.Load()
}

func Test_Engine_Borrow_GivesTheLastCopyToExactlyOneMember_WhenBorrowedConcurrently(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t)
	givenTitleWithCopies(t, env, "t-1", 1)

	memberIDs := []core.MemberIDString{"m-1", "m-2", "m-3", "m-4", "m-5"}
	givenMembers(t, env, memberIDs...)

	// act
	loans, queued := borrowConcurrently(t, env, "t-1", memberIDs...)

	// assert
	assert.Equal(t, int32(1), loans)
	assert.Equal(t, int32(4), queued)

	availability, err := env.Engine.TitleAvailability(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, availability.Counts["Lent"])
	require.Len(t, availability.Queue, 4)

	for i, entry := range availability.Queue {
		assert.Equal(t, i+1, entry.Position)
	}
}

// Every conflict a borrower sees is another borrower's successful append, so five contenders
// need at most five attempts each and stay within the default retry budget.
func Test_Engine_Borrow_ResolvesContention_WithDefaultRetryOptions(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t, engine.WithRetryOptions())
	givenTitleWithCopies(t, env, "t-1", 1)

	memberIDs := []core.MemberIDString{"m-1", "m-2", "m-3", "m-4", "m-5"}
	givenMembers(t, env, memberIDs...)

	// act
	loans, queued := borrowConcurrently(t, env, "t-1", memberIDs...)

	// assert
	assert.Equal(t, int32(1), loans)
	assert.Equal(t, int32(4), queued)
}

func Test_Engine_Queue_IsServedInPlacementOrder(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t)
	ctx := context.Background()
	givenTitleWithCopies(t, env, "t-1", 1)
	givenMembers(t, env, "m-0", "m-1", "m-2", "m-3")

	first := givenLoan(t, env, "m-0", "t-1")
	r1 := givenWaiting(t, env, "m-1", "t-1")
	r2 := givenWaiting(t, env, "m-2", "t-1")
	r3 := givenWaiting(t, env, "m-3", "t-1")
	assert.Equal(t, []int{1, 2, 3}, []int{r1.Position, r2.Position, r3.Position})

	// act
	returned, err := env.Engine.Return(ctx, first.LoanID)
	require.NoError(t, err)

	cancelled, err := env.Engine.Cancel(ctx, r1.ReservationID)
	require.NoError(t, err)

	picked, err := env.Engine.Borrow(ctx, "m-2", "t-1")
	require.NoError(t, err)
	require.NotNil(t, picked.Loan)

	returnedAgain, err := env.Engine.Return(ctx, picked.Loan.LoanID)
	require.NoError(t, err)

	// assert
	assert.Equal(t, r1.ReservationID, returned.HandedTo)
	assert.Equal(t, returned.CopyID, cancelled.CopyID)
	assert.Equal(t, r2.ReservationID, cancelled.HandedTo)
	assert.Equal(t, r2.ReservationID, picked.Loan.FulfilledReservationID)
	assert.Equal(t, r3.ReservationID, returnedAgain.HandedTo)
}

func Test_Engine_Return_ChargesTheFineOnce_WhenReturnedTwice(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t)
	ctx := context.Background()
	givenTitleWithCopies(t, env, "t-1", 1)
	givenMembers(t, env, "m-1")
	loan := givenLoan(t, env, "m-1", "t-1")
	env.Clock.Set(fixtures.Day(17))

	// act
	first, firstErr := env.Engine.Return(ctx, loan.LoanID)
	_, secondErr := env.Engine.Return(ctx, loan.LoanID)

	// assert
	require.NoError(t, firstErr)
	assert.True(t, decimal.RequireFromString("1.50").Equal(first.Fine), "fine was %s", first.Fine)
	assert.ErrorIs(t, secondErr, core.ErrAlreadyClosed)

	account, err := env.Engine.MemberAccount(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.50").Equal(account.Balance), "balance was %s", account.Balance)
	assert.Empty(t, account.OpenLoans)
}

func Test_Engine_Renew_Fails_WhenSomeoneIsWaiting(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t)
	ctx := context.Background()
	givenTitleWithCopies(t, env, "t-1", 1)
	givenMembers(t, env, "m-1", "m-2")
	loan := givenLoan(t, env, "m-1", "t-1")
	givenWaiting(t, env, "m-2", "t-1")

	// act
	_, err := env.Engine.Renew(ctx, loan.LoanID)

	// assert
	assert.ErrorIs(t, err, core.ErrReservationPending)
}

func Test_Engine_Renew_ExtendsFromThePreviousDueDate(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t)
	givenTitleWithCopies(t, env, "t-1", 1)
	givenMembers(t, env, "m-1")
	loan := givenLoan(t, env, "m-1", "t-1")
	env.Clock.Set(fixtures.Day(10))

	// act
	renewed, err := env.Engine.Renew(context.Background(), loan.LoanID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, fixtures.Day(28), renewed.DueAt)
	assert.Equal(t, 1, renewed.RenewalCount)
	assert.True(t, renewed.FineCharged.IsZero())
}

func Test_Engine_MarkCopyLost_ClosesTheBorrowersLoanAndCharges(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t)
	ctx := context.Background()
	copyIDs := givenTitleWithCopies(t, env, "t-1", 1)
	givenMembers(t, env, "m-1")
	givenLoan(t, env, "m-1", "t-1")
	env.Clock.Set(fixtures.Day(16))

	// act
	err := env.Engine.MarkCopyLost(ctx, copyIDs[0])

	// assert
	require.NoError(t, err)

	account, err := env.Engine.MemberAccount(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("26.00").Equal(account.Balance), "balance was %s", account.Balance)
	assert.Empty(t, account.OpenLoans)

	availability, err := env.Engine.TitleAvailability(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, availability.Counts["Lost"])
}

func Test_Engine_CopyCounts_AlwaysAddUpToTheTotal(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t)
	ctx := context.Background()
	copyIDs := givenTitleWithCopies(t, env, "t-1", 3)
	givenMembers(t, env, "m-1", "m-2", "m-3")

	steps := []struct {
		name string
		run  func() error
	}{
		{name: "borrow", run: func() error { _, err := env.Engine.Borrow(ctx, "m-1", "t-1"); return err }},
		{name: "reserve", run: func() error { _, err := env.Engine.Enqueue(ctx, "m-2", "t-1"); return err }},
		{name: "lose", run: func() error { return env.Engine.MarkCopyLost(ctx, copyIDs[2]) }},
		{name: "borrow reserved", run: func() error { _, err := env.Engine.Borrow(ctx, "m-2", "t-1"); return err }},
		{name: "queue", run: func() error { _, err := env.Engine.Enqueue(ctx, "m-3", "t-1"); return err }},
		{name: "find", run: func() error { return env.Engine.MarkCopyFound(ctx, copyIDs[2]) }},
		{name: "borrow found", run: func() error { _, err := env.Engine.Borrow(ctx, "m-3", "t-1"); return err }},
	}

	for _, step := range steps {
		// act
		err := step.run()

		// assert
		require.NoError(t, err, step.name)
		assertCopyCountsAddUp(t, env, "t-1")
	}
}

func Test_Engine_Borrow_Fails_WhenMemberIsSuspended(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t)
	ctx := context.Background()
	givenTitleWithCopies(t, env, "t-1", 1)
	givenMembers(t, env, "m-1")
	require.NoError(t, env.Engine.SuspendMember(ctx, "m-1", "lost card"))

	// act
	receipt, err := env.Engine.Borrow(ctx, "m-1", "t-1")

	// assert
	assert.ErrorIs(t, err, core.ErrIneligible)
	assert.Nil(t, receipt.Loan)
	assert.Nil(t, receipt.Reservation)
}

func Test_Engine_SettleFine_RestoresEligibility(t *testing.T) {
	// arrange
	env := fixtures.NewEngine(t)
	ctx := context.Background()
	givenTitleWithCopies(t, env, "t-1", 1)
	givenMembers(t, env, "m-1")
	require.NoError(t, env.Engine.ApplyFine(ctx, "m-1", decimal.RequireFromString("12.00")))

	_, err := env.Engine.Borrow(ctx, "m-1", "t-1")
	require.ErrorIs(t, err, core.ErrIneligible)

	// act
	err = env.Engine.SettleFine(ctx, "m-1", decimal.RequireFromString("5.00"))

	// assert
	require.NoError(t, err)
	givenLoan(t, env, "m-1", "t-1")
}

func Test_Engine_RecordsCommandMetrics_WhenMetricsAreConfigured(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	env := fixtures.NewEngine(t, engine.WithMetrics(metrics))
	givenTitleWithCopies(t, env, "t-1", 1)
	givenMembers(t, env, "m-1")

	// act
	givenLoan(t, env, "m-1", "t-1")

	// assert
	assert.Positive(t, metrics.Count(shell.CommandHandlerCallsMetric))
	assert.Positive(t, metrics.Count(shell.CommandHandlerDurationMetric))
}
