package settlefine

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/membership"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Decide records a settlement. The balance check runs on the member's whole history,
// and the append fails if any fine or settlement was recorded in between, so two
// concurrent settlements can never take the balance below zero.
//
//	ERROR: InvalidAmount for a negative amount or one above the balance, NotFound for an unknown member
//	IDEMPOTENCY: a zero amount records nothing
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	registry := membership.NewRegistry()
	for _, event := range history {
		registry.Apply(event)
	}

	member, ok := registry.Member(command.MemberID)
	if !ok {
		return core.ErrorDecision(core.NotFound(core.EntityMember, command.MemberID))
	}

	if err := membership.ValidateSettlement(member, command.Amount); err != nil {
		return core.ErrorDecision(err)
	}

	if command.Amount.IsZero() {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildFineSettled(command.MemberID, command.Amount, command.OccurredAt))
}

func BuildEventFilter(memberID core.MemberIDString) eventstore.Filter {
	return boundary.MemberFilter(memberID)
}
