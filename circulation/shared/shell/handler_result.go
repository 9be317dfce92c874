package shell

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

// HandlerResult is the outcome of a command handler execution.
type HandlerResult struct {
	// Idempotent means nothing was appended because the state already matched the command.
	Idempotent bool

	// Events are the events appended by this execution, or for idempotent results the
	// already recorded events that answer the command (possibly none).
	Events core.DomainEvents

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType is "none", "concurrency_conflict", "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is true when every attempt failed with a concurrency conflict.
	RetriesExhausted bool
}

func NewSuccessResult(retryMetrics RetryMetrics, events core.DomainEvents) HandlerResult {
	return newResult(false, retryMetrics, events)
}

func NewIdempotentResult(retryMetrics RetryMetrics, existing core.DomainEvents) HandlerResult {
	return newResult(true, retryMetrics, existing)
}

// NewErrorResult is used when the handler fails. A rejected decision may still have appended events.
func NewErrorResult(retryMetrics RetryMetrics, appended ...core.DomainEvent) HandlerResult {
	return newResult(false, retryMetrics, appended)
}

func newResult(idempotent bool, retryMetrics RetryMetrics, events core.DomainEvents) HandlerResult {
	return HandlerResult{
		Idempotent:       idempotent,
		Events:           events,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
