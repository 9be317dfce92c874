package eventstore

import (
	"errors"
	"fmt"
)

// ErrStoreFailure marks every error that originates in an event store engine.
var ErrStoreFailure = errors.New("event store failure")

// ErrConcurrencyConflict is returned by Append when the consistency boundary changed since it was queried.
var ErrConcurrencyConflict = fmt.Errorf("%w: concurrency conflict, no rows were affected", ErrStoreFailure)

var (
	ErrEmptyEventsTableName        = errors.New("empty events table name supplied")
	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrAppendingEventFailed        = errors.New("appending event failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting rows affected failed")
)

// MaxSequenceNumberUint is a type alias for uint, representing the maximum sequence number for a "dynamic event stream".
type MaxSequenceNumberUint = uint

// StoreFailure joins the given errors with ErrStoreFailure.
func StoreFailure(errs ...error) error {
	return errors.Join(append([]error{ErrStoreFailure}, errs...)...)
}
