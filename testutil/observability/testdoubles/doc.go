// Package testdoubles provides recording spies for the logger, metrics and tracing interfaces
// used by the event store engines and the command/query wrappers.
package testdoubles
