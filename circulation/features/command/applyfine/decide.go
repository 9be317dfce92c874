package applyfine

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/membership"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide adds a manual fine to the member's balance.
//
//	ERROR: InvalidAmount for a negative amount, NotFound for an unknown member
//	IDEMPOTENCY: a zero amount records nothing
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	if err := membership.ValidateFine(command.MemberID, command.Amount); err != nil {
		return core.ErrorDecision(err)
	}

	registry := membership.NewRegistry()
	for _, event := range history {
		registry.Apply(event)
	}

	if _, ok := registry.Member(command.MemberID); !ok {
		return core.ErrorDecision(core.NotFound(core.EntityMember, command.MemberID))
	}

	if command.Amount.IsZero() {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildFineApplied(command.MemberID, "", "", command.Amount, core.FineReasonManual, command.OccurredAt),
	)
}

func BuildEventFilter(memberID core.MemberIDString) eventstore.Filter {
	return boundary.MemberFilter(memberID)
}
