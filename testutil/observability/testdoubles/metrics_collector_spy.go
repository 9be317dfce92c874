package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MetricRecord is one captured metrics call. Kind is "duration", "counter" or "value".
type MetricRecord struct {
	Kind       string
	Metric     string
	Duration   time.Duration
	Value      float64
	Labels     map[string]string
	HasContext bool
}

// MetricsCollectorSpy records metric calls made through the plain MetricsCollector methods.
type MetricsCollectorSpy struct {
	mu      sync.Mutex
	records []MetricRecord
}

func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, d time.Duration, labels map[string]string) {
	s.add(MetricRecord{Kind: "duration", Metric: metric, Duration: d, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.add(MetricRecord{Kind: "counter", Metric: metric, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, v float64, labels map[string]string) {
	s.add(MetricRecord{Kind: "value", Metric: metric, Value: v, Labels: labels})
}

func (s *MetricsCollectorSpy) add(r MetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Labels = maps.Clone(r.Labels)
	s.records = append(s.records, r)
}

// Records returns all records for the metric name.
func (s *MetricsCollectorSpy) Records(metric string) []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MetricRecord, 0)

	for _, r := range s.records {
		if r.Metric == metric {
			out = append(out, r)
		}
	}

	return out
}

// HasRecord reports whether metric was recorded with all the given labels.
func (s *MetricsCollectorSpy) HasRecord(metric string, labels map[string]string) bool {
	for _, r := range s.Records(metric) {
		matches := true

		for k, v := range labels {
			if r.Labels[k] != v {
				matches = false
				break
			}
		}

		if matches {
			return true
		}
	}

	return false
}

// Count returns the number of records for metric.
func (s *MetricsCollectorSpy) Count(metric string) int {
	return len(s.Records(metric))
}

// ContextualMetricsCollectorSpy records like MetricsCollectorSpy but through the context-aware methods.
type ContextualMetricsCollectorSpy struct {
	MetricsCollectorSpy
}

func NewContextualMetricsCollectorSpy() *ContextualMetricsCollectorSpy {
	return &ContextualMetricsCollectorSpy{}
}

func (s *ContextualMetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, d time.Duration, labels map[string]string) {
	s.add(MetricRecord{Kind: "duration", Metric: metric, Duration: d, Labels: labels, HasContext: true})
}

func (s *ContextualMetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.add(MetricRecord{Kind: "counter", Metric: metric, Labels: labels, HasContext: true})
}

func (s *ContextualMetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, v float64, labels map[string]string) {
	s.add(MetricRecord{Kind: "value", Metric: metric, Value: v, Labels: labels, HasContext: true})
}
