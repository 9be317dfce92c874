package expiredpickups

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
)

// QueryHandler runs Query -> Project for ExpiredPickups.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

func (h QueryHandler) Handle(ctx context.Context, query Query) (ExpiredPickups, error) {
	return shell.QueryAndProject(ctx, h.eventStore, BuildEventFilter(),
		func(history core.DomainEvents, maxSequence uint) ExpiredPickups {
			return Project(history, query, maxSequence)
		})
}
