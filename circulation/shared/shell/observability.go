package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

const (
	CommandHandlerDurationMetric            = "commandhandler_handle_duration_seconds"
	CommandHandlerCallsMetric               = "commandhandler_handle_calls_total"
	CommandHandlerIdempotentMetric          = "commandhandler_idempotent_operations_total"
	CommandHandlerRejectedMetric            = "commandhandler_rejected_operations_total"
	CommandHandlerCanceledMetric            = "commandhandler_canceled_operations_total"
	CommandHandlerTimeoutMetric             = "commandhandler_timeout_operations_total"
	CommandHandlerConcurrencyConflictMetric = "commandhandler_concurrency_conflicts_total"

	// CommandHandlerRetriesMetric counts retries by command_type, attempt_number and error_type.
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric records each backoff delay by command_type and attempt_number.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric counts exhausted retries by command_type and final_error_type.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"
	QueryHandlerCallsMetric    = "queryhandler_handle_calls_total"
	QueryHandlerCanceledMetric = "queryhandler_canceled_operations_total"
	QueryHandlerTimeoutMetric  = "queryhandler_timeout_operations_total"

	StatusSuccess             = "success"
	StatusError               = "error"
	StatusIdempotent          = "idempotent"
	StatusRejected            = "rejected" // a business rule said no
	StatusCanceled            = "canceled"
	StatusTimeout             = "timeout"
	StatusConcurrencyConflict = "concurrency_conflict"

	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandRejected  = "command handler rejected command"
	LogMsgCommandFailed    = "command handler failed"
	LogMsgQueryStarted     = "query handler started"
	LogMsgQueryCompleted   = "query handler completed"
	LogMsgQueryFailed      = "query handler failed"

	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrEventCount      = "event_count"
	LogAttrError           = "error"

	SpanNameCommandHandle = "commandhandler.handle"
	SpanNameQueryHandle   = "queryhandler.handle"
)

// Aliases of the eventstore observability interfaces, so handlers and engines share collectors.
type (
	MetricsCollector           = eventstore.MetricsCollector
	ContextualMetricsCollector = eventstore.ContextualMetricsCollector
	TracingCollector           = eventstore.TracingCollector
	SpanContext                = eventstore.SpanContext
	ContextualLogger           = eventstore.ContextualLogger
	Logger                     = eventstore.Logger
)

func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		labelAttemptNumber: strconv.Itoa(attemptNumber),
		labelErrorType:     errorType,
	}
}

// ToMilliseconds converts a duration to float64 milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// StatusForError classifies a failed command or query.
func StatusForError(err error) string {
	var domainErr *core.Error

	switch {
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	case errors.As(err, &domainErr):
		return StatusRejected
	default:
		return StatusError
	}
}

var commandStatusCounters = map[string]string{
	StatusIdempotent:          CommandHandlerIdempotentMetric,
	StatusRejected:            CommandHandlerRejectedMetric,
	StatusCanceled:            CommandHandlerCanceledMetric,
	StatusTimeout:             CommandHandlerTimeoutMetric,
	StatusConcurrencyConflict: CommandHandlerConcurrencyConflictMetric,
}

var queryStatusCounters = map[string]string{
	StatusCanceled: QueryHandlerCanceledMetric,
	StatusTimeout:  QueryHandlerTimeoutMetric,
}

// RecordCommandMetrics records duration and call count, plus the per-status counter where one exists.
func RecordCommandMetrics(ctx context.Context, collector MetricsCollector, commandType, status string, duration time.Duration) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)

	if metric, ok := commandStatusCounters[status]; ok {
		incrementCounter(ctx, collector, metric, BuildCommandLabels(commandType, status))
	}
}

// RecordQueryMetrics records duration and call count, plus the per-status counter where one exists.
func RecordQueryMetrics(ctx context.Context, collector MetricsCollector, queryType, status string, duration time.Duration) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, QueryHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, QueryHandlerCallsMetric, labels)

	if metric, ok := queryStatusCounters[status]; ok {
		incrementCounter(ctx, collector, metric, BuildQueryLabels(queryType, status))
	}
}

func recordDuration(ctx context.Context, collector MetricsCollector, metric string, d time.Duration, labels map[string]string) {
	if contextual, ok := collector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	collector.RecordDuration(metric, d, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextual, ok := collector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// StartCommandSpan returns ctx unchanged and a nil span when tracing is disabled.
func StartCommandSpan(ctx context.Context, tracingCollector TracingCollector, commandType string) (context.Context, SpanContext) {
	return startSpan(ctx, tracingCollector, SpanNameCommandHandle, LogAttrCommandType, commandType)
}

// StartQuerySpan returns ctx unchanged and a nil span when tracing is disabled.
func StartQuerySpan(ctx context.Context, tracingCollector TracingCollector, queryType string) (context.Context, SpanContext) {
	return startSpan(ctx, tracingCollector, SpanNameQueryHandle, LogAttrQueryType, queryType)
}

func startSpan(ctx context.Context, tracingCollector TracingCollector, name, key, value string) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, name, map[string]string{key: value})
}

// FinishSpan completes a command or query span with the outcome.
func FinishSpan(tracingCollector TracingCollector, span SpanContext, status string, duration time.Duration, err error) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// HandlerLogger logs through the contextual logger when set, the plain logger otherwise, or not at all.
type HandlerLogger struct {
	Logger           Logger
	ContextualLogger ContextualLogger
}

func (l HandlerLogger) logInfo(ctx context.Context, msg string, args ...any) {
	if l.ContextualLogger != nil {
		l.ContextualLogger.InfoContext(ctx, msg, args...)
	} else if l.Logger != nil {
		l.Logger.Info(msg, args...)
	}
}

func (l HandlerLogger) logError(ctx context.Context, msg string, args ...any) {
	if l.ContextualLogger != nil {
		l.ContextualLogger.ErrorContext(ctx, msg, args...)
	} else if l.Logger != nil {
		l.Logger.Error(msg, args...)
	}
}

func (l HandlerLogger) LogCommandStart(ctx context.Context, commandType string) {
	l.logInfo(ctx, LogMsgCommandStarted, LogAttrCommandType, commandType)
}

func (l HandlerLogger) LogCommandSuccess(ctx context.Context, commandType, businessOutcome string, eventCount int, duration time.Duration) {
	l.logInfo(ctx, LogMsgCommandCompleted,
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, businessOutcome,
		LogAttrEventCount, eventCount,
		LogAttrDurationMS, ToMilliseconds(duration))
}

// LogCommandError logs rejections at info level, since they are expected business outcomes.
func (l HandlerLogger) LogCommandError(ctx context.Context, commandType, status string, err error) {
	if status == StatusRejected {
		l.logInfo(ctx, LogMsgCommandRejected, LogAttrCommandType, commandType, LogAttrError, err.Error())
		return
	}

	l.logError(ctx, LogMsgCommandFailed, LogAttrCommandType, commandType, LogAttrStatus, status, LogAttrError, err.Error())
}

func (l HandlerLogger) LogQueryStart(ctx context.Context, queryType string) {
	l.logInfo(ctx, LogMsgQueryStarted, LogAttrQueryType, queryType)
}

func (l HandlerLogger) LogQuerySuccess(ctx context.Context, queryType string, duration time.Duration) {
	l.logInfo(ctx, LogMsgQueryCompleted,
		LogAttrQueryType, queryType,
		LogAttrBusinessOutcome, StatusSuccess,
		LogAttrDurationMS, ToMilliseconds(duration))
}

func (l HandlerLogger) LogQueryError(ctx context.Context, queryType, status string, err error) {
	l.logError(ctx, LogMsgQueryFailed, LogAttrQueryType, queryType, LogAttrStatus, status, LogAttrError, err.Error())
}

func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, eventstore.ErrConcurrencyConflict)
}
