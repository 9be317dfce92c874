// Package fine computes overdue fines. It has no state and does no I/O.
package fine

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// DaysOverdue counts whole UTC calendar days from the due date to the return date, never below zero.
// A copy returned on its due date, at any hour, is not overdue.
func DaysOverdue(dueAt, returnedAt time.Time) int64 {
	days := int64(calendarDay(returnedAt).Sub(calendarDay(dueAt)) / day)
	if days < 0 {
		return 0
	}

	return days
}

// Compute returns DaysOverdue × dailyRate rounded half-up to precision decimal places.
func Compute(dueAt, returnedAt time.Time, dailyRate decimal.Decimal, precision int32) decimal.Decimal {
	days := DaysOverdue(dueAt, returnedAt)
	if days == 0 {
		return decimal.Zero
	}

	return dailyRate.Mul(decimal.NewFromInt(days)).Round(precision)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
