package observability

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TestInitTracing_Disabled tests that InitTracing returns nil when disabled
func TestInitTracing_Disabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), OTelConfig{Enabled: false})

	assert.NoError(t, err)
	assert.Nil(t, tp)
}

// TestShutdownTracing_Nil tests that shutting down a nil provider is a no-op
func TestShutdownTracing_Nil(t *testing.T) {
	assert.NoError(t, ShutdownTracing(context.Background(), nil))
}

// TestLoggerWithTraceContext_NoSpan verifies the entry passes through
// unchanged without an active span
func TestLoggerWithTraceContext_NoSpan(t *testing.T) {
	entry := logrus.WithField("component", "test")

	got := LoggerWithTraceContext(context.Background(), entry)

	assert.Equal(t, entry, got)
	assert.NotContains(t, got.Data, "trace_id")
}

// TestLoggerWithTraceContext_ActiveSpan verifies trace and span ids are
// attached when a span is recording
func TestLoggerWithTraceContext_ActiveSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	require.True(t, trace.SpanFromContext(ctx).IsRecording())

	got := LoggerWithTraceContext(ctx, logrus.WithField("component", "test"))

	assert.Contains(t, got.Data, "trace_id")
	assert.Contains(t, got.Data, "span_id")
	assert.Equal(t, span.SpanContext().TraceID().String(), got.Data["trace_id"])
}
