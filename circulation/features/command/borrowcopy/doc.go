// Package borrowcopy implements the Borrow Copy use case.
//
// The member is checked for eligibility, then served in this order: their own ReadyForPickup
// reservation, the first Available copy of the title, or a new place at the end of the title's queue.
// The last case appends the ReservationPlaced event and still fails with Unavailable.
//
// Title and member share one boundary, so two members racing for the last copy cannot both win:
// the loser's append conflicts, and the retry re-decides against the winner's loan.
package borrowcopy
