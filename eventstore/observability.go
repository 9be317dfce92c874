package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger is a Logger variant that receives the context, e.g. for trace correlation.
// It is satisfied by *slog.Logger as well.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector receives durations, counters and values from engines and command handlers.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector is an optional extension of MetricsCollector.
// When a collector implements it, the context-aware methods are preferred.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext is an active tracing span.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector starts and finishes spans on any tracing backend.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

const (
	MetricQueryDuration       = "eventstore_query_duration_seconds"
	MetricAppendDuration      = "eventstore_append_duration_seconds"
	MetricEventsQueried       = "eventstore_events_queried_total"
	MetricEventsAppended      = "eventstore_events_appended_total"
	MetricConcurrencyConflict = "eventstore_concurrency_conflicts_total"
	MetricStoreErrors         = "eventstore_store_errors_total"

	SpanNameQuery  = "eventstore.query"
	SpanNameAppend = "eventstore.append"

	StatusSuccess  = "success"
	StatusError    = "error"
	StatusConflict = "conflict"

	OperationQuery  = "query"
	OperationAppend = "append"

	AttrOperation   = "operation"
	AttrStatus      = "status"
	AttrEngine      = "engine"
	AttrEventCount  = "event_count"
	AttrMaxSequence = "max_sequence"
	AttrExpectedSeq = "expected_sequence"
	AttrDurationMS  = "duration_ms"
	AttrError       = "error"
	AttrFilter      = "filter"
	AttrQuery       = "query"
)

// Instrumentation bundles the optional observability collectors an engine reports to.
// All methods are safe to call with any of the collectors left nil.
type Instrumentation struct {
	Engine           string
	Logger           Logger
	ContextualLogger ContextualLogger
	Metrics          MetricsCollector
	Tracing          TracingCollector
}

// StartSpan starts a span when tracing is configured.
func (i Instrumentation) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext) {
	if i.Tracing == nil {
		return ctx, nil
	}

	if attrs == nil {
		attrs = make(map[string]string)
	}
	attrs[AttrEngine] = i.Engine

	return i.Tracing.StartSpan(ctx, name, attrs)
}

// FinishSpan finishes a span started with StartSpan.
func (i Instrumentation) FinishSpan(span SpanContext, status string, duration time.Duration, err error) {
	if i.Tracing == nil || span == nil {
		return
	}

	attrs := map[string]string{
		AttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[AttrError] = err.Error()
	}

	i.Tracing.FinishSpan(span, status, attrs)
}

// RecordOperation records duration, event count and error counters of one engine operation.
func (i Instrumentation) RecordOperation(ctx context.Context, operation string, duration time.Duration, eventCount int, err error) {
	if i.Metrics == nil {
		return
	}

	status := StatusFor(err)
	labels := map[string]string{AttrOperation: operation, AttrStatus: status, AttrEngine: i.Engine}

	durationMetric, countMetric := MetricQueryDuration, MetricEventsQueried
	if operation == OperationAppend {
		durationMetric, countMetric = MetricAppendDuration, MetricEventsAppended
	}

	i.recordDuration(ctx, durationMetric, duration, labels)

	switch status {
	case StatusSuccess:
		i.recordValue(ctx, countMetric, float64(eventCount), labels)
	case StatusConflict:
		i.incrementCounter(ctx, MetricConcurrencyConflict, labels)
	default:
		i.incrementCounter(ctx, MetricStoreErrors, labels)
	}
}

// Debug logs at debug level, preferring the contextual logger.
func (i Instrumentation) Debug(ctx context.Context, msg string, args ...any) {
	if i.ContextualLogger != nil {
		i.ContextualLogger.DebugContext(ctx, msg, args...)
	} else if i.Logger != nil {
		i.Logger.Debug(msg, args...)
	}
}

// Info logs at info level, preferring the contextual logger.
func (i Instrumentation) Info(ctx context.Context, msg string, args ...any) {
	if i.ContextualLogger != nil {
		i.ContextualLogger.InfoContext(ctx, msg, args...)
	} else if i.Logger != nil {
		i.Logger.Info(msg, args...)
	}
}

// Warn logs at warn level, preferring the contextual logger.
func (i Instrumentation) Warn(ctx context.Context, msg string, args ...any) {
	if i.ContextualLogger != nil {
		i.ContextualLogger.WarnContext(ctx, msg, args...)
	} else if i.Logger != nil {
		i.Logger.Warn(msg, args...)
	}
}

// Error logs at error level, preferring the contextual logger.
func (i Instrumentation) Error(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{AttrError, err.Error()}, args...)

	if i.ContextualLogger != nil {
		i.ContextualLogger.ErrorContext(ctx, msg, allArgs...)
	} else if i.Logger != nil {
		i.Logger.Error(msg, allArgs...)
	}
}

func (i Instrumentation) recordDuration(ctx context.Context, metric string, d time.Duration, labels map[string]string) {
	if c, ok := i.Metrics.(ContextualMetricsCollector); ok {
		c.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	i.Metrics.RecordDuration(metric, d, labels)
}

func (i Instrumentation) recordValue(ctx context.Context, metric string, v float64, labels map[string]string) {
	if c, ok := i.Metrics.(ContextualMetricsCollector); ok {
		c.RecordValueContext(ctx, metric, v, labels)
		return
	}

	i.Metrics.RecordValue(metric, v, labels)
}

func (i Instrumentation) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if c, ok := i.Metrics.(ContextualMetricsCollector); ok {
		c.IncrementCounterContext(ctx, metric, labels)
		return
	}

	i.Metrics.IncrementCounter(metric, labels)
}

// StatusFor classifies an engine result for metrics and spans.
func StatusFor(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrConcurrencyConflict):
		return StatusConflict
	default:
		return StatusError
	}
}

// ToMilliseconds converts a duration to milliseconds with three decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
