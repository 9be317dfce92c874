// Package fixtures builds circulation histories and engines for tests.
//
// Histories are plain core.DomainEvents, so Decide functions can be tested without a store.
// NewEngine wires an Engine to a fresh in-memory store and a FixedClock.
package fixtures
