package titleavailability

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
)

// QueryHandler runs Query -> Project for TitleAvailability.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle returns NotFound for a title that was never catalogued.
func (h QueryHandler) Handle(ctx context.Context, query Query) (TitleAvailability, error) {
	if err := shell.ValidateCommand(query); err != nil {
		return TitleAvailability{}, err
	}

	type projected struct {
		result TitleAvailability
		found  bool
	}

	p, err := shell.QueryAndProject(ctx, h.eventStore, BuildEventFilter(query.TitleID),
		func(history core.DomainEvents, maxSequence uint) projected {
			result, found := Project(history, query, maxSequence)
			return projected{result: result, found: found}
		})
	if err != nil {
		return TitleAvailability{}, err
	}

	if !p.found {
		return TitleAvailability{}, core.NotFound(core.EntityTitle, query.TitleID)
	}

	return p.result, nil
}
