// Package placereservation implements the Place Reservation use case.
//
// A reservation placed while a copy is Available is activated right away.
package placereservation
