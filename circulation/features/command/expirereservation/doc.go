// Package expirereservation implements the Expire Reservation use case.
//
// Expiring a ReadyForPickup reservation releases its copy to the next waiting member, or back to the shelf.
package expirereservation
