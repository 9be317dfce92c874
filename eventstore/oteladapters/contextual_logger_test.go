package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/AntonStoeckl/library-circulation/eventstore/oteladapters"
)

func Test_SlogBridgeLoggerWithHandler_WritesThroughHandler(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// act
	logger.DebugContext(context.Background(), "debug message", "loan_id", "l-1")
	logger.ErrorContext(context.Background(), "error message", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"msg":"debug message"`)
	assert.Contains(t, output, `"loan_id":"l-1"`)
	assert.Contains(t, output, `"level":"ERROR"`)
}

func Test_SlogBridgeLogger_DoesNotPanicWithoutProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("test")

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "info message", "key", "value")
	})
}

func Test_OTelLogger_DoesNotPanicOnOddArgs(t *testing.T) {
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))

	assert.NotPanics(t, func() {
		logger.WarnContext(context.Background(), "warn message", "dangling")
		logger.InfoContext(context.Background(), "info message", 42, "not-a-key", "key", 1.5)
	})
}

type recordingLogExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}

	return nil
}

func (e *recordingLogExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingLogExporter) ForceFlush(context.Context) error { return nil }

func Test_Providers_Logger_CorrelatesRecordsWithTheActiveSpan(t *testing.T) {
	// arrange
	exporter := &recordingLogExporter{}
	providers := oteladapters.Setup("circulation-test", oteladapters.WithLogProcessor(sdklog.NewSimpleProcessor(exporter)))
	defer func() { _ = providers.Shutdown(context.Background()) }()

	ctx, span := providers.TracerProvider.Tracer("test").Start(context.Background(), "commandhandler.handle")
	logger := providers.Logger("test")

	// act
	logger.InfoContext(ctx, "loan opened", "loan_id", "l-1")
	span.End()

	// assert
	exporter.mu.Lock()
	defer exporter.mu.Unlock()

	require.Len(t, exporter.records, 1)
	assert.Equal(t, "loan opened", exporter.records[0].Body().AsString())
	assert.Equal(t, span.SpanContext().TraceID(), exporter.records[0].TraceID())
}
