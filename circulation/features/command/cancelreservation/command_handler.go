package cancelreservation

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
)

// CommandHandler runs Query -> Decide -> Append for CancelReservation.
type CommandHandler struct {
	eventStore   shell.EventStore
	policy       core.Policy
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

func NewCommandHandler(eventStore shell.EventStore, policy core.Policy, opts ...Option) CommandHandler {
	handler := CommandHandler{eventStore: eventStore, policy: policy}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle looks up the reservation first to learn the title and member that bound the decision.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := shell.ValidateCommand(command); err != nil {
		return shell.HandlerResult{}, err
	}

	placed, err := shell.LookupReservation(ctx, h.eventStore, command.ReservationID)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	decide := func(history core.DomainEvents) core.DecisionResult {
		return Decide(history, command, h.policy)
	}

	return shell.DecideAndAppend(ctx, h.eventStore, BuildEventFilter(placed.TitleID, placed.MemberID), decide, h.retryOptions...)
}
