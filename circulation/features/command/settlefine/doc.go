// Package settlefine implements the Settle Fine use case.
//
// A settlement may not exceed the member's balance.
package settlefine
