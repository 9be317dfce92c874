package expiredpickups

import (
	"github.com/AntonStoeckl/library-circulation/circulation/boundary"
	"github.com/AntonStoeckl/library-circulation/circulation/reservations"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Project folds the reservation events of all titles and keeps the elapsed pickups.
func Project(history core.DomainEvents, query Query, maxSequence uint) ExpiredPickups {
	queue := reservations.NewQueue()
	for _, event := range history {
		queue.Apply(event)
	}

	expired := queue.ExpiredPickups(query.At)
	result := ExpiredPickups{
		Reservations:   make([]ExpiredPickup, 0, len(expired)),
		Count:          len(expired),
		SequenceNumber: maxSequence,
	}

	for _, r := range expired {
		result.Reservations = append(result.Reservations, ExpiredPickup{
			ReservationID: r.ID,
			TitleID:       r.TitleID,
			MemberID:      r.MemberID,
			CopyID:        r.CopyID,
			PickupBy:      r.PickupBy,
		})
	}

	return result
}

// BuildEventFilter selects the reservation events of every title.
func BuildEventFilter() eventstore.Filter {
	return eventstore.NewFilter(eventstore.Types(boundary.ReservationEventTypes...))
}
