package engine

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation/circulation/features/command/borrowcopy"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/cancelreservation"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/expirereservation"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/placereservation"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/renewloan"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/returncopy"
	"github.com/AntonStoeckl/library-circulation/circulation/features/query/titleavailability"
	"github.com/AntonStoeckl/library-circulation/circulation/reservations"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const logMsgPositionUnknown = "reservation placed, queue position could not be read"

// Borrow lends a copy of the title to the member. Without a free copy the member is queued:
// the receipt then carries the new reservation and the error is Unavailable.
func (e *Engine) Borrow(ctx context.Context, memberID core.MemberIDString, titleID core.TitleIDString) (BorrowReceipt, error) {
	command := borrowcopy.BuildCommand(titleID, memberID, e.newID(), e.newID(), e.now())

	result, err := e.borrowCopy.Handle(ctx, command)

	var receipt BorrowReceipt
	var loan LoanReceipt
	var placed *core.ReservationPlaced

	for _, event := range result.Events {
		switch ev := event.(type) {
		case core.LoanOpened:
			loan = LoanReceipt{
				LoanID:   ev.LoanID,
				CopyID:   ev.CopyID,
				TitleID:  ev.TitleID,
				MemberID: ev.MemberID,
				DueAt:    ev.DueAt,
			}
		case core.LoanRenewed:
			loan.DueAt = ev.DueAt
			loan.RenewalCount = ev.RenewalCount
		case core.ReservationFulfilled:
			loan.FulfilledReservationID = ev.ReservationID
		case core.ReservationPlaced:
			placed = &ev
		}
	}

	if loan.LoanID != "" {
		loan.Idempotent = result.Idempotent
		loan.FineCharged = decimal.Zero
		receipt.Loan = &loan
	}

	if placed != nil {
		reservation := e.waitingReceipt(ctx, *placed)
		receipt.Reservation = &reservation
	}

	return receipt, err
}

// Return closes the loan, charges the overdue fine and passes the copy on to the queue.
func (e *Engine) Return(ctx context.Context, loanID core.LoanIDString) (ReturnReceipt, error) {
	result, err := e.returnCopy.Handle(ctx, returncopy.BuildCommand(loanID, e.now()))
	if err != nil {
		return ReturnReceipt{}, err
	}

	receipt := ReturnReceipt{LoanID: loanID, Fine: decimal.Zero}

	for _, event := range result.Events {
		switch ev := event.(type) {
		case core.LoanClosed:
			receipt.CopyID = ev.CopyID
			receipt.TitleID = ev.TitleID
			receipt.MemberID = ev.MemberID
			receipt.ReturnedAt = ev.OccurredAt
		case core.FineApplied:
			receipt.Fine = receipt.Fine.Add(ev.Amount)
		case core.ReservationReadyForPickup:
			receipt.HandedTo = ev.ReservationID
		}
	}

	return receipt, nil
}

func (e *Engine) Renew(ctx context.Context, loanID core.LoanIDString) (LoanReceipt, error) {
	result, err := e.renewLoan.Handle(ctx, renewloan.BuildCommand(loanID, e.now()))
	if err != nil {
		return LoanReceipt{}, err
	}

	receipt := LoanReceipt{LoanID: loanID, FineCharged: decimal.Zero}

	for _, event := range result.Events {
		switch ev := event.(type) {
		case core.LoanRenewed:
			receipt.TitleID = ev.TitleID
			receipt.MemberID = ev.MemberID
			receipt.DueAt = ev.DueAt
			receipt.RenewalCount = ev.RenewalCount
		case core.FineApplied:
			receipt.FineCharged = receipt.FineCharged.Add(ev.Amount)
		}
	}

	return receipt, nil
}

// Enqueue places a reservation. It is ReadyForPickup at once when a copy was on the shelf.
func (e *Engine) Enqueue(ctx context.Context, memberID core.MemberIDString, titleID core.TitleIDString) (ReservationReceipt, error) {
	command := placereservation.BuildCommand(e.newID(), titleID, memberID, e.now())

	result, err := e.placeReservation.Handle(ctx, command)
	if err != nil {
		return ReservationReceipt{}, err
	}

	var receipt ReservationReceipt

	for _, event := range result.Events {
		switch ev := event.(type) {
		case core.ReservationPlaced:
			receipt = e.waitingReceipt(ctx, ev)
		case core.ReservationReadyForPickup:
			receipt.State = reservations.StateReadyForPickup.String()
			receipt.Position = 0
			receipt.CopyID = ev.CopyID
			receipt.PickupBy = ev.PickupBy
		}
	}

	return receipt, nil
}

// Cancel withdraws a reservation; a held copy goes to the next Waiting member.
func (e *Engine) Cancel(ctx context.Context, reservationID core.ReservationIDString) (ReleaseReceipt, error) {
	result, err := e.cancelReservation.Handle(ctx, cancelreservation.BuildCommand(reservationID, e.now()))
	if err != nil {
		return ReleaseReceipt{}, err
	}

	receipt := ReleaseReceipt{ReservationID: reservationID, Idempotent: result.Idempotent}

	for _, event := range result.Events {
		switch ev := event.(type) {
		case core.ReservationCancelled:
			receipt.CopyID = ev.CopyID
		case core.ReservationReadyForPickup:
			receipt.HandedTo = ev.ReservationID
		}
	}

	return receipt, nil
}

// Expire ends a reservation whose pickup window has elapsed.
func (e *Engine) Expire(ctx context.Context, reservationID core.ReservationIDString) (ReleaseReceipt, error) {
	result, err := e.expireReservation.Handle(ctx, expirereservation.BuildCommand(reservationID, e.now()))
	if err != nil {
		return ReleaseReceipt{}, err
	}

	receipt := ReleaseReceipt{ReservationID: reservationID, Idempotent: result.Idempotent}

	for _, event := range result.Events {
		switch ev := event.(type) {
		case core.ReservationExpired:
			receipt.CopyID = ev.CopyID
		case core.ReservationReadyForPickup:
			receipt.HandedTo = ev.ReservationID
		}
	}

	return receipt, nil
}

// waitingReceipt reads the queue position of a reservation that was just placed.
func (e *Engine) waitingReceipt(ctx context.Context, placed core.ReservationPlaced) ReservationReceipt {
	receipt := ReservationReceipt{
		ReservationID: placed.ReservationID,
		TitleID:       placed.TitleID,
		MemberID:      placed.MemberID,
		State:         reservations.StateWaiting.String(),
	}

	availability, err := e.titleAvailability.Handle(ctx, titleavailability.BuildQuery(placed.TitleID))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.instr.Warn(ctx, logMsgPositionUnknown, "reservation_id", placed.ReservationID, "error", err.Error())
		}

		return receipt
	}

	for _, entry := range availability.Queue {
		if entry.ReservationID == placed.ReservationID {
			receipt.Position = entry.Position
		}
	}

	return receipt
}
