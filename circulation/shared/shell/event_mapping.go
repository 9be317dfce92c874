package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

var (
	ErrMappingToDomainEventFailed                 = errors.New("mapping to domain event failed")
	ErrMappingToDomainEventUnknownEventType       = errors.New("unknown event type")
	ErrMappingToStorableEventFailedForDomainEvent = errors.New("mapping to storable event failed for domain event")
	ErrMappingToStorableEventFailedForMetadata    = errors.New("mapping to storable event failed for metadata")
)

// DomainEventsFrom converts StorableEvents to DomainEvents, keeping the order.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	payload := storableEvent.PayloadJSON

	switch storableEvent.EventType {
	case core.TitleCataloguedEventType:
		return unmarshal[core.TitleCatalogued](payload)
	case core.CopyAddedToTitleEventType:
		return unmarshal[core.CopyAddedToTitle](payload)
	case core.CopyMarkedLostEventType:
		return unmarshal[core.CopyMarkedLost](payload)
	case core.CopyFoundEventType:
		return unmarshal[core.CopyFound](payload)
	case core.MemberRegisteredEventType:
		return unmarshal[core.MemberRegistered](payload)
	case core.MemberSuspendedEventType:
		return unmarshal[core.MemberSuspended](payload)
	case core.MemberReinstatedEventType:
		return unmarshal[core.MemberReinstated](payload)
	case core.FineAppliedEventType:
		return unmarshal[core.FineApplied](payload)
	case core.FineSettledEventType:
		return unmarshal[core.FineSettled](payload)
	case core.LoanOpenedEventType:
		return unmarshal[core.LoanOpened](payload)
	case core.LoanRenewedEventType:
		return unmarshal[core.LoanRenewed](payload)
	case core.LoanClosedEventType:
		return unmarshal[core.LoanClosed](payload)
	case core.ReservationPlacedEventType:
		return unmarshal[core.ReservationPlaced](payload)
	case core.ReservationReadyForPickupEventType:
		return unmarshal[core.ReservationReadyForPickup](payload)
	case core.ReservationFulfilledEventType:
		return unmarshal[core.ReservationFulfilled](payload)
	case core.ReservationExpiredEventType:
		return unmarshal[core.ReservationExpired](payload)
	case core.ReservationCancelledEventType:
		return unmarshal[core.ReservationCancelled](payload)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshal[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var event E
	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}

// StorableEventFrom converts a DomainEvent and its EventMetadata to a StorableEvent.
func StorableEventFrom(event core.DomainEvent, metadata EventMetadata) (eventstore.StorableEvent, error) {
	payloadJSON, err := jsoniter.ConfigFastest.Marshal(event)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	metadataJSON, err := jsoniter.ConfigFastest.Marshal(metadata)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForMetadata, err)
	}

	storableEvent, err := eventstore.BuildStorableEvent(event.IsEventType(), event.HasOccurredAt(), payloadJSON, metadataJSON)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	return storableEvent, nil
}
