package addcopy

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide adds a copy to a catalogued title. A new copy goes straight to the head of the
// title's queue when members are waiting, so it is never observable as Available then.
//
//	ERROR: NotFound for an unknown title, InvalidState when the copy ID belongs to another title
//	IDEMPOTENCY: adding the same copy to the same title again records nothing
func Decide(history core.DomainEvents, command Command, policy core.Policy) core.DecisionResult {
	for _, event := range history {
		added, ok := event.(core.CopyAddedToTitle)
		if !ok || added.CopyID != command.CopyID {
			continue
		}

		if added.TitleID == command.TitleID {
			return core.IdempotentDecision(added)
		}

		return core.ErrorDecision(core.InvalidState(core.EntityCopy, command.CopyID, "already belongs to title "+added.TitleID))
	}

	state := boundary.Project(history)
	if !state.Catalog.HasTitle(command.TitleID) {
		return core.ErrorDecision(core.NotFound(core.EntityTitle, command.TitleID))
	}

	changes := state.Begin()
	changes.Record(core.BuildCopyAddedToTitle(command.CopyID, command.TitleID, command.OccurredAt))
	changes.HandOver(command.TitleID, command.CopyID, command.OccurredAt, policy)

	return changes.Success()
}

// BuildEventFilter selects the title's boundary plus any earlier use of the copy ID.
func BuildEventFilter(titleID core.TitleIDString, copyID core.CopyIDString) eventstore.Filter {
	return eventstore.NewFilter(
		eventstore.Types(boundary.EventTypes...).WhereAny(
			eventstore.P(core.PropTitleID, titleID),
			eventstore.P(core.PropCopyID, copyID),
		),
	)
}
