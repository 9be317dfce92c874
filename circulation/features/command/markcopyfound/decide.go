package markcopyfound

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/catalog"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide returns a Lost copy to circulation. If members are waiting, the copy is earmarked
// for the head of the queue right away.
//
//	ERROR: NotFound for an unknown copy, InvalidState when the copy is Lent or ReservedPendingPickup
//	IDEMPOTENCY: an Available copy records nothing
func Decide(history core.DomainEvents, command Command, policy core.Policy) core.DecisionResult {
	state := boundary.Project(history)

	cp, ok := state.Catalog.Copy(command.CopyID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityCopy, command.CopyID))
	}

	if cp.State == catalog.CopyAvailable {
		return core.IdempotentDecision()
	}

	if cp.State != catalog.CopyLost {
		return core.ErrorDecision(core.InvalidState(core.EntityCopy, cp.ID, "copy is "+cp.State.String()+", not Lost"))
	}

	changes := state.Begin()
	changes.Record(core.BuildCopyFound(cp.ID, cp.TitleID, command.OccurredAt))
	changes.HandOver(cp.TitleID, cp.ID, command.OccurredAt, policy)

	return changes.Success()
}

func BuildEventFilter(titleID core.TitleIDString) eventstore.Filter {
	return boundary.TitleFilter(titleID)
}
