// Package engine is the capability surface of the circulation system.
//
// Engine wires every command and query feature to one event store, injects the policy, the clock
// and ID generation, wraps each handler with metrics, tracing and logging, and translates handler
// results into receipts. Presentation code depends on the Circulation, CatalogAdmin,
// MembershipAdmin and Queries interfaces only.
package engine
