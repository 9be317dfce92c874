package reinstatemember

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/membership"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide reinstates a suspended member. Reinstating an active member changes nothing.
// An outstanding balance is not cleared; eligibility still checks it on the next borrow.
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	registry := membership.NewRegistry()
	for _, event := range history {
		registry.Apply(event)
	}

	member, ok := registry.Member(command.MemberID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityMember, command.MemberID))
	}

	if member.Status == membership.StatusActive {
		return core.IdempotentDecision()
	}

	if _, err := member.Status.Reinstate(); err != nil {
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(core.BuildMemberReinstated(command.MemberID, command.OccurredAt))
}

func BuildEventFilter(memberID core.MemberIDString) eventstore.Filter {
	return boundary.MemberFilter(memberID)
}
