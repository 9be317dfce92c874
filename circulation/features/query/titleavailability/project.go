package titleavailability

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/catalog"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Project builds the title's availability from its boundary history.
// The bool is false when the title was never catalogued.
func Project(history core.DomainEvents, query Query, maxSequence uint) (TitleAvailability, bool) {
	state := boundary.Project(history)

	title, ok := state.Catalog.Title(query.TitleID)
	if !ok {
		return TitleAvailability{}, false
	}

	result := TitleAvailability{
		TitleID:        title.ID,
		ISBN:           title.ISBN,
		Name:           title.Name,
		Author:         title.Author,
		TotalCopies:    title.TotalCopies(),
		Copies:         make([]CopyInfo, 0, len(title.Copies)),
		Counts:         make(map[string]int, len(catalog.AllCopyStates)),
		Queue:          make([]QueueEntry, 0),
		ReadyForPickup: make([]PickupEntry, 0),
		SequenceNumber: maxSequence,
	}

	for _, cp := range title.Copies {
		result.Copies = append(result.Copies, CopyInfo{CopyID: cp.ID, State: cp.State.String()})
	}

	for copyState, count := range state.Catalog.StateCounts(query.TitleID) {
		result.Counts[copyState.String()] = count
	}

	for i, r := range state.Queue.Waiting(query.TitleID) {
		result.Queue = append(result.Queue, QueueEntry{
			ReservationID: r.ID,
			MemberID:      r.MemberID,
			Position:      i + 1,
			PlacedAt:      r.PlacedAt,
		})
	}

	for _, r := range state.Queue.Ready(query.TitleID) {
		result.ReadyForPickup = append(result.ReadyForPickup, PickupEntry{
			ReservationID: r.ID,
			MemberID:      r.MemberID,
			CopyID:        r.CopyID,
			PickupBy:      r.PickupBy,
		})
	}

	return result, true
}

func BuildEventFilter(titleID core.TitleIDString) eventstore.Filter {
	return boundary.TitleFilter(titleID)
}
