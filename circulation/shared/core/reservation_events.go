package core

import (
	"time"
)

const (
	ReservationPlacedEventType         = "ReservationPlaced"
	ReservationReadyForPickupEventType = "ReservationReadyForPickup"
	ReservationFulfilledEventType      = "ReservationFulfilled"
	ReservationExpiredEventType        = "ReservationExpired"
	ReservationCancelledEventType      = "ReservationCancelled"
)

// ReservationPlaced puts a member at the tail of a title's queue.
type ReservationPlaced struct {
	ReservationID ReservationIDString
	TitleID       TitleIDString
	MemberID      MemberIDString
	OccurredAt    OccurredAt
}

func BuildReservationPlaced(reservationID, titleID, memberID string, occurredAt time.Time) ReservationPlaced {
	return ReservationPlaced{
		ReservationID: reservationID,
		TitleID:       titleID,
		MemberID:      memberID,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e ReservationPlaced) IsEventType() string      { return ReservationPlacedEventType }
func (e ReservationPlaced) HasOccurredAt() time.Time { return e.OccurredAt }

// ReservationReadyForPickup earmarks CopyID for the reservation until PickupBy.
type ReservationReadyForPickup struct {
	ReservationID ReservationIDString
	TitleID       TitleIDString
	MemberID      MemberIDString
	CopyID        CopyIDString
	PickupBy      time.Time
	OccurredAt    OccurredAt
}

func BuildReservationReadyForPickup(
	reservationID, titleID, memberID, copyID string,
	pickupBy time.Time,
	occurredAt time.Time,
) ReservationReadyForPickup {
	return ReservationReadyForPickup{
		ReservationID: reservationID,
		TitleID:       titleID,
		MemberID:      memberID,
		CopyID:        copyID,
		PickupBy:      ToOccurredAt(pickupBy),
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e ReservationReadyForPickup) IsEventType() string      { return ReservationReadyForPickupEventType }
func (e ReservationReadyForPickup) HasOccurredAt() time.Time { return e.OccurredAt }

// ReservationFulfilled is recorded when the member collects the earmarked copy.
type ReservationFulfilled struct {
	ReservationID ReservationIDString
	TitleID       TitleIDString
	MemberID      MemberIDString
	CopyID        CopyIDString
	LoanID        LoanIDString
	OccurredAt    OccurredAt
}

func BuildReservationFulfilled(reservationID, titleID, memberID, copyID, loanID string, occurredAt time.Time) ReservationFulfilled {
	return ReservationFulfilled{
		ReservationID: reservationID,
		TitleID:       titleID,
		MemberID:      memberID,
		CopyID:        copyID,
		LoanID:        loanID,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e ReservationFulfilled) IsEventType() string      { return ReservationFulfilledEventType }
func (e ReservationFulfilled) HasOccurredAt() time.Time { return e.OccurredAt }

// ReservationExpired is recorded when the pickup window elapsed. CopyID is the copy it held.
type ReservationExpired struct {
	ReservationID ReservationIDString
	TitleID       TitleIDString
	MemberID      MemberIDString
	CopyID        CopyIDString
	OccurredAt    OccurredAt
}

func BuildReservationExpired(reservationID, titleID, memberID, copyID string, occurredAt time.Time) ReservationExpired {
	return ReservationExpired{
		ReservationID: reservationID,
		TitleID:       titleID,
		MemberID:      memberID,
		CopyID:        copyID,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e ReservationExpired) IsEventType() string      { return ReservationExpiredEventType }
func (e ReservationExpired) HasOccurredAt() time.Time { return e.OccurredAt }

// ReservationCancelled is recorded when a member withdraws. CopyID is empty unless it was ready for pickup.
type ReservationCancelled struct {
	ReservationID ReservationIDString
	TitleID       TitleIDString
	MemberID      MemberIDString
	CopyID        CopyIDString
	OccurredAt    OccurredAt
}

func BuildReservationCancelled(reservationID, titleID, memberID, copyID string, occurredAt time.Time) ReservationCancelled {
	return ReservationCancelled{
		ReservationID: reservationID,
		TitleID:       titleID,
		MemberID:      memberID,
		CopyID:        copyID,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e ReservationCancelled) IsEventType() string      { return ReservationCancelledEventType }
func (e ReservationCancelled) HasOccurredAt() time.Time { return e.OccurredAt }
