// Package expiredpickups lists ReadyForPickup reservations whose pickup window has elapsed.
// The expiry sweep feeds on it.
package expiredpickups

import (
	"time"
)

const queryType = "ExpiredPickups"

type Query struct {
	At time.Time
}

func (q Query) QueryType() string {
	return queryType
}

func BuildQuery(at time.Time) Query {
	return Query{At: at.UTC()}
}
