package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// TracingCollector starts one OpenTelemetry span per store operation or command.
type TracingCollector struct {
	tracer trace.Tracer
}

func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan returns the context carrying the new span.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan ignores span contexts that were not created by this collector.
func (t *TracingCollector) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	s, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	s.span.SetAttributes(toAttributes(attrs)...)
	s.SetStatus(status)
	s.span.End()
}

var _ eventstore.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext wraps a trace.Span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps the status vocabulary of the engines and command wrappers onto span codes.
// Business rejections (e.g. "rejected", "idempotent") keep the span Ok.
func (s *OTelSpanContext) SetStatus(status string) {
	s.span.SetAttributes(attribute.String("status", status))

	switch status {
	case "success", "idempotent", "rejected":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		s.span.SetStatus(codes.Error, "operation failed")
	case "canceled":
		s.span.SetStatus(codes.Error, "operation canceled")
	case "timeout":
		s.span.SetStatus(codes.Error, "operation timed out")
	case "conflict", "concurrency_conflict":
		s.span.SetStatus(codes.Error, "concurrency conflict")
	}
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ eventstore.SpanContext = (*OTelSpanContext)(nil)
