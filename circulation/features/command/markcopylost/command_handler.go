package markcopylost

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// CommandHandler runs Query -> Decide -> Append for MarkCopyLost.
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

// Handle resolves the copy's title and current borrower, so the fines land inside the borrower's boundary.
// Both are resolved again on every attempt.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := shell.ValidateCommand(command); err != nil {
		return shell.HandlerResult{}, err
	}

	added, err := shell.LookupCopy(ctx, h.eventStore, command.CopyID)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	resolve := func(ctx context.Context) (eventstore.Filter, shell.DecideFunc, error) {
		borrower, resolveErr := shell.QueryAndProject(ctx, h.eventStore, boundary.TitleFilter(added.TitleID),
			func(history core.DomainEvents, _ uint) core.MemberIDString {
				return CurrentBorrower(history, command.CopyID)
			})
		if resolveErr != nil {
			return eventstore.Filter{}, nil, resolveErr
		}

		decide := func(history core.DomainEvents) core.DecisionResult {
			return Decide(history, command, borrower, h.policy)
		}

		return BuildEventFilter(added.TitleID, borrower), decide, nil
	}

	return shell.ResolveDecideAndAppend(ctx, h.eventStore, resolve, h.retryOptions...)
}
