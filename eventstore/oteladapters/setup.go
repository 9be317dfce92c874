package oteladapters

import (
	"context"
	"errors"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/attribute"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Providers holds the SDK providers created by Setup.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	reader         *sdkmetric.ManualReader
}

type setupConfig struct {
	traceOpts  []sdktrace.TracerProviderOption
	meterOpts  []sdkmetric.Option
	loggerOpts []sdklog.LoggerProviderOption
}

// SetupOption adds an exporter, reader or processor to the providers built by Setup.
type SetupOption func(*setupConfig)

// WithSpanProcessor hands every ended span to the processor.
func WithSpanProcessor(processor sdktrace.SpanProcessor) SetupOption {
	return func(c *setupConfig) {
		c.traceOpts = append(c.traceOpts, sdktrace.WithSpanProcessor(processor))
	}
}

// WithSpanExporter batches ended spans to the exporter.
func WithSpanExporter(exporter sdktrace.SpanExporter) SetupOption {
	return func(c *setupConfig) {
		c.traceOpts = append(c.traceOpts, sdktrace.WithBatcher(exporter))
	}
}

// WithMetricReader adds a reader, typically a PeriodicReader around an exporter.
func WithMetricReader(reader sdkmetric.Reader) SetupOption {
	return func(c *setupConfig) {
		c.meterOpts = append(c.meterOpts, sdkmetric.WithReader(reader))
	}
}

// WithLogProcessor hands every log record emitted through Logger to the processor.
func WithLogProcessor(processor sdklog.Processor) SetupOption {
	return func(c *setupConfig) {
		c.loggerOpts = append(c.loggerOpts, sdklog.WithProcessor(processor))
	}
}

// Setup creates tracer, meter and logger providers for serviceName.
// A manual reader is always attached to the meter provider, see Snapshot.
func Setup(serviceName string, opts ...SetupOption) *Providers {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	reader := sdkmetric.NewManualReader()

	cfg := setupConfig{
		traceOpts:  []sdktrace.TracerProviderOption{sdktrace.WithResource(res)},
		meterOpts:  []sdkmetric.Option{sdkmetric.WithResource(res), sdkmetric.WithReader(reader)},
		loggerOpts: []sdklog.LoggerProviderOption{sdklog.WithResource(res)},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Providers{
		TracerProvider: sdktrace.NewTracerProvider(cfg.traceOpts...),
		MeterProvider:  sdkmetric.NewMeterProvider(cfg.meterOpts...),
		LoggerProvider: sdklog.NewLoggerProvider(cfg.loggerOpts...),
		reader:         reader,
	}
}

// Collectors returns a metrics and a tracing collector scoped to the instrumentation name.
func (p *Providers) Collectors(scope string) (*MetricsCollector, *TracingCollector) {
	return NewMetricsCollector(p.MeterProvider.Meter(scope)), NewTracingCollector(p.TracerProvider.Tracer(scope))
}

// Logger returns a trace-correlated SlogBridgeLogger emitting through the providers' LoggerProvider.
func (p *Providers) Logger(scope string) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(scope, otelslog.WithLoggerProvider(p.LoggerProvider))}
}

// Snapshot collects the current metric state, keyed by metric name with the number of data points.
func (p *Providers) Snapshot(ctx context.Context) (map[string]int, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	summary := make(map[string]int)

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Histogram[float64]:
				summary[m.Name] += len(data.DataPoints)
			case metricdata.Sum[int64]:
				summary[m.Name] += len(data.DataPoints)
			case metricdata.Gauge[float64]:
				summary[m.Name] += len(data.DataPoints)
			}
		}
	}

	return summary, nil
}

// Shutdown flushes pending spans, metrics and log records to their exporters and stops the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
		p.LoggerProvider.Shutdown(ctx),
	)
}
