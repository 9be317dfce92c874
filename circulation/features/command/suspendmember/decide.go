package suspendmember

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/membership"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide suspends an active member.
//
//	ERROR: NotFound for an unknown member
//	IDEMPOTENCY: an already suspended member stays suspended, the first reason is kept
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	registry := membership.NewRegistry()
	for _, event := range history {
		registry.Apply(event)
	}

	member, ok := registry.Member(command.MemberID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityMember, command.MemberID))
	}

	if member.Status == membership.StatusSuspended {
		return core.IdempotentDecision()
	}

	if _, err := member.Status.Suspend(); err != nil {
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(core.BuildMemberSuspended(command.MemberID, command.Reason, command.OccurredAt))
}

func BuildEventFilter(memberID core.MemberIDString) eventstore.Filter {
	return boundary.MemberFilter(memberID)
}
