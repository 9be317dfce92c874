package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy holds the circulation rules a library is configured with.
type Policy struct {
	LoanPeriod          time.Duration
	RenewalCap          int
	DailyFineRate       decimal.Decimal
	CurrencyPrecision   int32
	PickupWindow        time.Duration
	SuspensionThreshold decimal.Decimal
	MaxOpenLoans        int // 0 means unlimited
	LostCopyFee         decimal.Decimal
}
