package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/testutil/observability/testdoubles"
)

func Test_RetryWithExponentialBackoff_Succeeds_WithoutRetries(t *testing.T) {
	// arrange
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		return nil
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_Retries_WhenConcurrencyConflict(t *testing.T) {
	// arrange
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return eventstore.ErrConcurrencyConflict
		}

		return nil
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn, shell.WithBaseDelay(time.Millisecond))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_FailsFast_WhenErrorNotRetryable(t *testing.T) {
	// arrange
	callCount := 0
	boom := errors.New("boom")
	fn := func(_ context.Context) error {
		callCount++
		return boom
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

	// assert
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "other", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_ReportsExhaustion(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	fn := func(_ context.Context) error { return eventstore.ErrConcurrencyConflict }

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn,
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0),
		shell.WithMetrics(metrics, "BorrowCopy"),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.Equal(t, 3, meta.Attempts)
	assert.True(t, meta.RetriesExhausted)
	assert.Equal(t, "concurrency_conflict", meta.LastErrorType)
	assert.Equal(t, 2, metrics.Count(shell.CommandHandlerRetriesMetric))
	assert.Equal(t, 2, metrics.Count(shell.CommandHandlerRetryDelayMetric))
	assert.True(t, metrics.HasRecord(shell.CommandHandlerMaxRetriesReachedMetric, map[string]string{
		shell.LogAttrCommandType: "BorrowCopy",
	}))
}

func Test_RetryWithExponentialBackoff_StopsWaiting_WhenContextCanceled(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	fn := func(_ context.Context) error {
		cancel()
		return eventstore.ErrConcurrencyConflict
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(time.Hour))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, "context_canceled", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_RejectsInvalidOptions(t *testing.T) {
	fn := func(_ context.Context) error { return nil }

	testCases := []struct {
		name     string
		option   shell.RetryOption
		expected error
	}{
		{name: "zero max attempts", option: shell.WithMaxAttempts(0), expected: shell.ErrInvalidMaxAttempts},
		{name: "negative base delay", option: shell.WithBaseDelay(-time.Second), expected: shell.ErrNegativeBaseDelay},
		{name: "jitter above one", option: shell.WithJitterFactor(1.5), expected: shell.ErrInvalidJitterFactor},
		{name: "nil metrics collector", option: shell.WithMetrics(nil, "X"), expected: shell.ErrNilMetricsCollector},
		{name: "empty command type", option: shell.WithMetrics(testdoubles.NewMetricsCollectorSpy(), ""), expected: shell.ErrEmptyCommandType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := shell.RetryWithExponentialBackoff(context.Background(), fn, tc.option)

			// assert
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}
