package core

// DecisionResult represents the outcome of a business decision in a Decide function.
//
// Construct it only with IdempotentDecision, SuccessDecision or ErrorDecision.
// An idempotent decision carries the already recorded events that answer the command (if any),
// they are returned to the caller but never appended again.
// An error decision may carry events that must be appended although the command failed,
// e.g. the reservation placed when a borrow finds no copy.
type DecisionResult struct {
	Outcome string // "idempotent", "success", or "error"
	Events  DomainEvents
	Err     error
}

const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
	errorOutcome      = "error"
)

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision(existing ...DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: idempotentOutcome,
		Events:  existing,
	}
}

// SuccessDecision creates a DecisionResult with events to append atomically.
func SuccessDecision(event DomainEvent, more ...DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Events:  append(DomainEvents{event}, more...),
	}
}

// ErrorDecision creates a DecisionResult for a business rule violation, optionally with events to append.
func ErrorDecision(err error, events ...DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: errorOutcome,
		Events:  events,
		Err:     err,
	}
}

// IsIdempotent reports whether nothing has to be appended because the state already matches.
func (r DecisionResult) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}

// HasEventToAppend returns true if there is at least one event to append to the event store.
func (r DecisionResult) HasEventToAppend() bool {
	return r.Outcome != idempotentOutcome && len(r.Events) > 0
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
