package cataloguetitle

import (
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide catalogues the title unless it already is.
//
//	GIVEN: a TitleID
//	WHEN: CatalogueTitle is received
//	THEN: TitleCatalogued
//	IDEMPOTENCY: an already catalogued title returns its TitleCatalogued
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	for _, event := range history {
		if catalogued, ok := event.(core.TitleCatalogued); ok && catalogued.TitleID == command.TitleID {
			return core.IdempotentDecision(catalogued)
		}
	}

	return core.SuccessDecision(
		core.BuildTitleCatalogued(command.TitleID, command.ISBN, command.Name, command.Author, command.OccurredAt),
	)
}

func BuildEventFilter(titleID core.TitleIDString) eventstore.Filter {
	return eventstore.NewFilter(
		eventstore.Types(core.TitleCataloguedEventType).WhereAny(eventstore.P(core.PropTitleID, titleID)),
	)
}
