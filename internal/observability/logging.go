package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// ExecutionLogger is a structured logger with automatic trace correlation.
// It wraps slog.Logger and stamps every entry with the workflow and execution
// identity so entries from concurrent engine instances can be told apart.
type ExecutionLogger struct {
	logger       *slog.Logger
	executionID  string
	workflowName string
}

// NewExecutionLogger creates a new ExecutionLogger with the specified handler
// and execution identity.
func NewExecutionLogger(handler slog.Handler, executionID, workflowName string) *ExecutionLogger {
	return &ExecutionLogger{
		logger:       slog.New(handler),
		executionID:  executionID,
		workflowName: workflowName,
	}
}

// Debug logs a debug-level message with automatic trace correlation.
func (l *ExecutionLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Debug(msg, args...)
}

// Info logs an info-level message with automatic trace correlation.
func (l *ExecutionLogger) Info(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Info(msg, args...)
}

// Warn logs a warning-level message with automatic trace correlation.
func (l *ExecutionLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Warn(msg, args...)
}

// Error logs an error-level message with automatic trace correlation.
func (l *ExecutionLogger) Error(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Error(msg, args...)
}

// WithContext creates a new slog.Logger with trace correlation fields added.
// Extracts trace_id and span_id from the OpenTelemetry span in the context
// and adds execution_id and workflow to every log entry.
func (l *ExecutionLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := l.logger.With(
		slog.String("execution_id", l.executionID),
		slog.String("workflow", l.workflowName),
	)

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		logger = logger.With(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return logger
}

// NewJSONHandler creates a new JSON log handler with the specified output and
// level. JSON format is ideal for structured logging in production.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// NewTextHandler creates a new text log handler with the specified output and
// level. Text format is human-readable and useful for development.
func NewTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// NewHandler builds a handler from the level and format names used in
// configuration files ("debug"/"info"/"warn"/"error", "json"/"text").
// Unknown values fall back to info-level JSON.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	if strings.EqualFold(format, "text") {
		return NewTextHandler(w, l)
	}
	return NewJSONHandler(w, l)
}
