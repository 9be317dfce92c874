package registermember

import (
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide registers the member unless they already are. Registration is idempotent.
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	for _, event := range history {
		if registered, ok := event.(core.MemberRegistered); ok && registered.MemberID == command.MemberID {
			return core.IdempotentDecision(registered)
		}
	}

	return core.SuccessDecision(core.BuildMemberRegistered(command.MemberID, command.Name, command.OccurredAt))
}

func BuildEventFilter(memberID core.MemberIDString) eventstore.Filter {
	return eventstore.NewFilter(
		eventstore.Types(core.MemberRegisteredEventType).WhereAny(eventstore.P(core.PropMemberID, memberID)),
	)
}
