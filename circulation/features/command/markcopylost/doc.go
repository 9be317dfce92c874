// Package markcopylost implements the Mark Copy Lost use case.
//
// A copy lost while on loan closes the loan and charges the borrower the overdue fine plus the lost-copy fee.
// The borrower is part of the boundary but is only known after a query, see CommandHandler.Handle.
package markcopylost
