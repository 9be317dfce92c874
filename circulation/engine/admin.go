package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation/circulation/features/command/addcopy"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/applyfine"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/cataloguetitle"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/markcopyfound"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/markcopylost"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/registermember"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/reinstatemember"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/settlefine"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/suspendmember"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

func (e *Engine) CatalogueTitle(ctx context.Context, title TitleDetails) (core.TitleIDString, error) {
	titleID := e.idOr(title.TitleID)

	_, err := e.catalogueTitle.Handle(ctx, cataloguetitle.BuildCommand(titleID, title.ISBN, title.Name, title.Author, e.now()))
	if err != nil {
		return "", err
	}

	return titleID, nil
}

func (e *Engine) AddCopy(ctx context.Context, titleID core.TitleIDString, copyID core.CopyIDString) (core.CopyIDString, error) {
	copyID = e.idOr(copyID)

	if _, err := e.addCopy.Handle(ctx, addcopy.BuildCommand(titleID, copyID, e.now())); err != nil {
		return "", err
	}

	return copyID, nil
}

func (e *Engine) MarkCopyLost(ctx context.Context, copyID core.CopyIDString) error {
	_, err := e.markCopyLost.Handle(ctx, markcopylost.BuildCommand(copyID, e.now()))
	return err
}

func (e *Engine) MarkCopyFound(ctx context.Context, copyID core.CopyIDString) error {
	_, err := e.markCopyFound.Handle(ctx, markcopyfound.BuildCommand(copyID, e.now()))
	return err
}

func (e *Engine) RegisterMember(ctx context.Context, memberID core.MemberIDString, name string) (core.MemberIDString, error) {
	memberID = e.idOr(memberID)

	if _, err := e.registerMember.Handle(ctx, registermember.BuildCommand(memberID, name, e.now())); err != nil {
		return "", err
	}

	return memberID, nil
}

func (e *Engine) SuspendMember(ctx context.Context, memberID core.MemberIDString, reason string) error {
	_, err := e.suspendMember.Handle(ctx, suspendmember.BuildCommand(memberID, reason, e.now()))
	return err
}

func (e *Engine) ReinstateMember(ctx context.Context, memberID core.MemberIDString) error {
	_, err := e.reinstateMember.Handle(ctx, reinstatemember.BuildCommand(memberID, e.now()))
	return err
}

func (e *Engine) ApplyFine(ctx context.Context, memberID core.MemberIDString, amount decimal.Decimal) error {
	_, err := e.applyFine.Handle(ctx, applyfine.BuildCommand(memberID, amount, e.now()))
	return err
}

func (e *Engine) SettleFine(ctx context.Context, memberID core.MemberIDString, amount decimal.Decimal) error {
	_, err := e.settleFine.Handle(ctx, settlefine.BuildCommand(memberID, amount, e.now()))
	return err
}
