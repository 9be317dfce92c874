// Package renewloan implements the Renew Loan use case.
//
// Renewal is refused once the cap is reached, and while anyone waits for the title.
// An overdue renewal charges the fine accrued so far.
package renewloan
