package engine

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/features/query/expiredpickups"
	"github.com/AntonStoeckl/library-circulation/circulation/features/query/memberaccount"
	"github.com/AntonStoeckl/library-circulation/circulation/features/query/titleavailability"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

func (e *Engine) TitleAvailability(ctx context.Context, titleID core.TitleIDString) (titleavailability.TitleAvailability, error) {
	return e.titleAvailability.Handle(ctx, titleavailability.BuildQuery(titleID))
}

// MemberAccount reports accruing fines and eligibility as of the engine clock.
func (e *Engine) MemberAccount(ctx context.Context, memberID core.MemberIDString) (memberaccount.MemberAccount, error) {
	return e.memberAccount.Handle(ctx, memberaccount.BuildQuery(memberID, e.now()))
}

func (e *Engine) ExpiredPickups(ctx context.Context) (expiredpickups.ExpiredPickups, error) {
	return e.expiredPickups.Handle(ctx, expiredpickups.BuildQuery(e.now()))
}
