package engine

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/autopilot-sh/autopilot/internal/observability"
	"github.com/autopilot-sh/autopilot/internal/queue"
	"github.com/autopilot-sh/autopilot/internal/resource"
	"github.com/autopilot-sh/autopilot/internal/types"
	"github.com/autopilot-sh/autopilot/internal/workflow"
)

// ExecutionOptions are the caller-supplied knobs for one execution.
type ExecutionOptions struct {
	// Priority is a scheduling label, "normal" or "high".
	Priority string

	// Critical marks the execution for a scheduling priority bonus.
	Critical bool

	// Dependencies lists execution ids that must complete first. Advisory
	// metadata only; the sequential engine does not enforce ordering.
	Dependencies []types.ID

	// Strategy is the automation level resolved for this execution.
	Strategy string

	// Requirements overrides the default resource reservation.
	Requirements resource.Requirements

	// Rollback, when set, is invoked with the index of the last attempted
	// step and the partial results if any step fails.
	Rollback workflow.RollbackFunc

	// SkipCache bypasses the execution cache for both lookup and store.
	SkipCache bool
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithTracer attaches an OpenTelemetry tracer. Without one, no spans are
// created.
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = tracer }
}

// WithMetrics attaches a metrics recorder. Without one, metrics calls are
// dropped.
func WithMetrics(recorder *observability.MetricsRecorder) EngineOption {
	return func(e *Engine) { e.metrics = recorder }
}

// WithQueue attaches the pending-execution queue surfaced through system
// metrics.
func WithQueue(q *queue.ExecutionQueue) EngineOption {
	return func(e *Engine) { e.queue = q }
}

// WithStepTimeout overrides the configured per-step hard deadline.
func WithStepTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.stepTimeout = d
		}
	}
}
