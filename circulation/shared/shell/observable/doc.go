// Package observable decorates command and query handlers with metrics, tracing and logging.
//
// The core handlers stay free of observability concerns: they return a shell.HandlerResult and an error,
// and the wrappers translate those into a status (success, idempotent, rejected, canceled, timeout,
// concurrency_conflict or error) that drives counters, span status and log level.
package observable
