// Package returncopy implements the Return Copy use case.
//
// Closing the loan, the late fine and handing the copy to the next waiting member are one append.
package returncopy
