package markcopyfound

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
)

// CommandHandler runs Query -> Decide -> Append for MarkCopyFound.
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

// Handle resolves the copy's title first; a copy never changes its title.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := shell.ValidateCommand(command); err != nil {
		return shell.HandlerResult{}, err
	}

	added, err := shell.LookupCopy(ctx, h.eventStore, command.CopyID)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	decide := func(history core.DomainEvents) core.DecisionResult {
		return Decide(history, command, h.policy)
	}

	return shell.DecideAndAppend(ctx, h.eventStore, BuildEventFilter(added.TitleID), decide, h.retryOptions...)
}
