package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// SpanRecord is a started span and, once finished, its final status and attributes.
type SpanRecord struct {
	Name        string
	StartAttrs  map[string]string
	FinishAttrs map[string]string
	Status      string
	Finished    bool
}

// TracingCollectorSpy records spans in start order.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []*SpanRecord
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

type spySpan struct {
	spy    *TracingCollectorSpy
	record *SpanRecord
}

func (s *spySpan) SetStatus(status string) {
	s.spy.mu.Lock()
	defer s.spy.mu.Unlock()

	s.record.Status = status
}

func (s *spySpan) AddAttribute(key, value string) {
	s.spy.mu.Lock()
	defer s.spy.mu.Unlock()

	if s.record.FinishAttrs == nil {
		s.record.FinishAttrs = make(map[string]string)
	}

	s.record.FinishAttrs[key] = value
}

func (t *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record := &SpanRecord{Name: name, StartAttrs: maps.Clone(attrs)}
	t.spans = append(t.spans, record)

	return ctx, &spySpan{spy: t, record: record}
}

func (t *TracingCollectorSpy) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*spySpan)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	span.record.Status = status
	span.record.Finished = true

	if span.record.FinishAttrs == nil {
		span.record.FinishAttrs = make(map[string]string)
	}

	maps.Copy(span.record.FinishAttrs, attrs)
}

// Spans returns copies of all spans with the given name.
func (t *TracingCollectorSpy) Spans(name string) []SpanRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]SpanRecord, 0)

	for _, s := range t.spans {
		if s.Name == name {
			out = append(out, *s)
		}
	}

	return out
}
