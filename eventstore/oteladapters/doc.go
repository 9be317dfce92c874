// Package oteladapters connects the eventstore and command handler observability interfaces to OpenTelemetry.
//
//   - SlogBridgeLogger and OTelLogger implement eventstore.ContextualLogger.
//   - MetricsCollector implements eventstore.ContextualMetricsCollector with lazily created instruments.
//   - TracingCollector implements eventstore.TracingCollector.
//
// Setup builds SDK tracer, meter and logger providers for processes that don't bring their own.
// Exporters are attached with SetupOptions.
package oteladapters
