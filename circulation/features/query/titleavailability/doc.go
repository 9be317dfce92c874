// Package titleavailability answers what a title's shelf and queue look like right now:
// every copy with its state, the per-state counts, the Waiting reservations with their derived
// positions, and the reservations waiting to be picked up.
package titleavailability
