package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestExecutionLogger_StampsExecutionIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := NewExecutionLogger(NewJSONHandler(&buf, slog.LevelDebug), "exec-1", "release-check")

	logger.Info(context.Background(), "execution started")

	out := buf.String()
	assert.Contains(t, out, `"execution_id":"exec-1"`)
	assert.Contains(t, out, `"workflow":"release-check"`)
	// no span in the context, so no trace fields
	assert.NotContains(t, out, "trace_id")
}

func TestExecutionLogger_WithContextAddsTraceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewExecutionLogger(NewJSONHandler(&buf, slog.LevelDebug), "exec-1", "release-check")

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.WithContext(ctx).Info("step executed")

	out := buf.String()
	assert.Contains(t, out, `"trace_id":"0102030405060708090a0b0c0d0e0f10"`)
	assert.Contains(t, out, `"span_id":"0102030405060708"`)
	assert.Contains(t, out, `"execution_id":"exec-1"`)
}

func TestNewHandler_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer

	text := slog.New(NewHandler(&buf, "warn", "text"))
	text.Info("dropped")
	text.Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}
