package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// ErrorKind classifies domain errors.
type ErrorKind string

const (
	KindNotFound             ErrorKind = "not found"
	KindInvalidState         ErrorKind = "invalid state"
	KindIneligible           ErrorKind = "ineligible"
	KindUnavailable          ErrorKind = "unavailable"
	KindDuplicateReservation ErrorKind = "duplicate reservation"
	KindRenewalCapExceeded   ErrorKind = "renewal cap exceeded"
	KindReservationPending   ErrorKind = "reservation pending"
	KindInvalidAmount        ErrorKind = "invalid amount"
	KindInvalidInput         ErrorKind = "invalid input"
)

// IneligibilityReason explains why a member may not borrow.
type IneligibilityReason string

const (
	ReasonSuspended             IneligibilityReason = "Suspended"
	ReasonFineThresholdExceeded IneligibilityReason = "FineThresholdExceeded"
	ReasonLoanLimitReached      IneligibilityReason = "LoanLimitReached"
)

const (
	ReasonAlreadyClosed   = "already closed"
	ReasonAlreadyBorrowed = "already borrowed by the member"
)

// Entity names used in errors.
const (
	EntityTitle       = "title"
	EntityCopy        = "copy"
	EntityMember      = "member"
	EntityLoan        = "loan"
	EntityReservation = "reservation"
)

// Error is the typed domain error.
//
// errors.Is matches on Kind, and on Reason as well when the target carries one,
// so errors.Is(err, ErrInvalidState) also holds for an AlreadyClosed error.
type Error struct {
	Kind   ErrorKind
	Entity string
	ID     string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Entity != "" {
		b.WriteString(e.Entity)

		if e.ID != "" {
			b.WriteString(" " + e.ID)
		}

		b.WriteString(": ")
	}

	b.WriteString(string(e.Kind))

	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}

	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && (t.Reason == "" || t.Reason == e.Reason)
}

// Sentinels for errors.Is.
var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrInvalidState         = &Error{Kind: KindInvalidState}
	ErrAlreadyClosed        = &Error{Kind: KindInvalidState, Reason: ReasonAlreadyClosed}
	ErrAlreadyBorrowed      = &Error{Kind: KindInvalidState, Reason: ReasonAlreadyBorrowed}
	ErrIneligible           = &Error{Kind: KindIneligible}
	ErrUnavailable          = &Error{Kind: KindUnavailable}
	ErrDuplicateReservation = &Error{Kind: KindDuplicateReservation}
	ErrRenewalCapExceeded   = &Error{Kind: KindRenewalCapExceeded}
	ErrReservationPending   = &Error{Kind: KindReservationPending}
	ErrInvalidAmount        = &Error{Kind: KindInvalidAmount}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}

	// ErrBoundaryChanged is returned by a decision that finds the facts its boundary was chosen from
	// have changed, e.g. a lost copy now lent to another member. Command handlers retry it like any
	// concurrency conflict.
	ErrBoundaryChanged = fmt.Errorf("%w: boundary changed while it was resolved", eventstore.ErrConcurrencyConflict)

	// ErrStoreFailure marks every error caused by the event store, including exhausted concurrency retries.
	ErrStoreFailure = eventstore.ErrStoreFailure
)

func NotFound(entity, id string) error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

func InvalidState(entity, id, reason string) error {
	return &Error{Kind: KindInvalidState, Entity: entity, ID: id, Reason: reason}
}

func AlreadyClosed(loanID string) error {
	return &Error{Kind: KindInvalidState, Entity: EntityLoan, ID: loanID, Reason: ReasonAlreadyClosed}
}

func Ineligible(memberID string, reason IneligibilityReason) error {
	return &Error{Kind: KindIneligible, Entity: EntityMember, ID: memberID, Reason: string(reason)}
}

// IneligibleBecause returns a sentinel that matches Ineligible errors with the given reason only.
func IneligibleBecause(reason IneligibilityReason) error {
	return &Error{Kind: KindIneligible, Reason: string(reason)}
}

func Unavailable(titleID string) error {
	return &Error{Kind: KindUnavailable, Entity: EntityTitle, ID: titleID, Reason: "no copy available, reservation created"}
}

func DuplicateReservation(titleID, memberID string) error {
	return &Error{Kind: KindDuplicateReservation, Entity: EntityTitle, ID: titleID, Reason: "member " + memberID + " already holds an active reservation"}
}

func RenewalCapExceeded(loanID string) error {
	return &Error{Kind: KindRenewalCapExceeded, Entity: EntityLoan, ID: loanID}
}

func ReservationPending(loanID string) error {
	return &Error{Kind: KindReservationPending, Entity: EntityLoan, ID: loanID, Reason: "members are waiting for this title"}
}

func InvalidAmount(memberID, reason string) error {
	return &Error{Kind: KindInvalidAmount, Entity: EntityMember, ID: memberID, Reason: reason}
}

func InvalidInput(err error) error {
	return &Error{Kind: KindInvalidInput, Err: err}
}

// IneligibilityReasonOf extracts the reason of an Ineligible error.
func IneligibilityReasonOf(err error) (IneligibilityReason, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Kind == KindIneligible {
		return IneligibilityReason(domainErr.Reason), true
	}

	return "", false
}
