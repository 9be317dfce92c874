package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell/config"
	"github.com/AntonStoeckl/library-circulation/eventstore/oteladapters"
)

var (
	ErrUnknownExporter        = errors.New("unknown observability exporter")
	ErrCreatingExporterFailed = errors.New("creating observability exporter failed")
)

type exporters struct {
	spans   sdktrace.SpanExporter
	metrics sdkmetric.Exporter
	logs    sdklog.Exporter
}

// setupTelemetry builds the providers for the configured exporter and installs them as the global ones.
// Spans, metrics and logs are flushed when the providers shut down.
func setupTelemetry(ctx context.Context, cfg config.ObservabilityConfig, w io.Writer) (*oteladapters.Providers, error) {
	exp, err := newExporters(ctx, cfg, w)
	if err != nil {
		return nil, errors.Join(ErrCreatingExporterFailed, err)
	}

	providers := oteladapters.Setup(
		cfg.ServiceName,
		oteladapters.WithSpanExporter(exp.spans),
		oteladapters.WithMetricReader(sdkmetric.NewPeriodicReader(exp.metrics, sdkmetric.WithInterval(cfg.MetricInterval))),
		oteladapters.WithLogProcessor(sdklog.NewBatchProcessor(exp.logs)),
	)

	otel.SetTracerProvider(providers.TracerProvider)
	otel.SetMeterProvider(providers.MeterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	global.SetLoggerProvider(providers.LoggerProvider)

	return providers, nil
}

func newExporters(ctx context.Context, cfg config.ObservabilityConfig, w io.Writer) (exporters, error) {
	var (
		exp  exporters
		errs [3]error
	)

	switch cfg.Exporter {
	case config.ExporterStdout:
		exp.spans, errs[0] = stdouttrace.New(stdouttrace.WithWriter(w))
		exp.metrics, errs[1] = stdoutmetric.New(stdoutmetric.WithWriter(w))
		exp.logs, errs[2] = stdoutlog.New(stdoutlog.WithWriter(w))

	case config.ExporterOTLP:
		traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint)}

		if cfg.Insecure {
			traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
			metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
			logOpts = append(logOpts, otlploggrpc.WithInsecure())
		}

		exp.spans, errs[0] = otlptracegrpc.New(ctx, traceOpts...)
		exp.metrics, errs[1] = otlpmetricgrpc.New(ctx, metricOpts...)
		exp.logs, errs[2] = otlploggrpc.New(ctx, logOpts...)

	default:
		return exporters{}, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Exporter)
	}

	if err := errors.Join(errs[:]...); err != nil {
		return exporters{}, err
	}

	return exp, nil
}
