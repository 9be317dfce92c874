// Package registermember implements the Register Member use case.
//
// Registering a member who already exists is a no-op.
package registermember
