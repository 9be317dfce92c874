// Package memberaccount implements the member account query: status, balance, fines accruing on
// overdue loans, eligibility to borrow, open loans and active reservations.
package memberaccount
