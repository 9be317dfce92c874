package memberaccount

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
)

// QueryHandler runs Query -> Project for MemberAccount.
type QueryHandler struct {
	eventStore shell.QueriesEvents
	policy     core.Policy
}

func NewQueryHandler(eventStore shell.QueriesEvents, policy core.Policy) QueryHandler {
	return QueryHandler{eventStore: eventStore, policy: policy}
}

func (h QueryHandler) Handle(ctx context.Context, query Query) (MemberAccount, error) {
	if err := shell.ValidateCommand(query); err != nil {
		return MemberAccount{}, err
	}

	var found bool

	account, err := shell.QueryAndProject(ctx, h.eventStore, BuildEventFilter(query.MemberID),
		func(history core.DomainEvents, maxSequence uint) MemberAccount {
			var result MemberAccount
			result, found = Project(history, query, maxSequence, h.policy)

			return result
		})
	if err != nil {
		return MemberAccount{}, err
	}

	if !found {
		return MemberAccount{}, core.NotFound(core.EntityMember, query.MemberID)
	}

	return account, nil
}
