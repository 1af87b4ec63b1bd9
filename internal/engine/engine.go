// Package engine executes workflows strictly sequentially, tying together
// caching, optimization, resource accounting, scheduling, and metrics.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autopilot-sh/autopilot/internal/automation"
	"github.com/autopilot-sh/autopilot/internal/cache"
	"github.com/autopilot-sh/autopilot/internal/config"
	"github.com/autopilot-sh/autopilot/internal/observability"
	"github.com/autopilot-sh/autopilot/internal/optimize"
	"github.com/autopilot-sh/autopilot/internal/queue"
	"github.com/autopilot-sh/autopilot/internal/resource"
	"github.com/autopilot-sh/autopilot/internal/schedule"
	"github.com/autopilot-sh/autopilot/internal/types"
	"github.com/autopilot-sh/autopilot/internal/workflow"
)

// SystemMetrics is a point-in-time view of engine load.
type SystemMetrics struct {
	ActiveExecutions    int                  `json:"active_executions"`
	QueueLength         int                  `json:"queue_length"`
	ResourceUtilization resource.Utilization `json:"resource_utilization"`
}

// Engine executes one workflow at a time per instance. Multiple instances
// may run concurrently; the resource manager is the only contended
// dependency and serializes its own accounting.
type Engine struct {
	registry  *workflow.StepRegistry
	optimizer *optimize.Optimizer
	resources *resource.Manager
	scheduler *schedule.Scheduler
	cache     *cache.ExecutionCache
	logger    *slog.Logger

	tracer  trace.Tracer
	metrics *observability.MetricsRecorder
	queue   *queue.ExecutionQueue

	stepTimeout time.Duration
	tracker     *statusTracker
}

// New creates an engine. Registry, optimizer, resources, scheduler, and
// cache are required collaborators; tracer, metrics, and queue are optional.
// A nil logger defaults to slog.Default().
func New(cfg config.EngineConfig, registry *workflow.StepRegistry, optimizer *optimize.Optimizer,
	resources *resource.Manager, scheduler *schedule.Scheduler, execCache *cache.ExecutionCache,
	logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		registry:    registry,
		optimizer:   optimizer,
		resources:   resources,
		scheduler:   scheduler,
		cache:       execCache,
		logger:      logger,
		stepTimeout: cfg.StepTimeout,
		tracker:     newStatusTracker(cfg.MaxTrackedExecutions),
	}
	if e.stepTimeout <= 0 {
		e.stepTimeout = 5 * time.Minute
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteWorkflow runs the workflow to completion. Business failures (a
// step failing validation or execution) come back as Success=false in the
// result, never as an error. Contract violations (nil or empty workflow)
// and resource exhaustion are returned as typed errors so callers can
// branch on "retry later" versus "never as given".
func (e *Engine) ExecuteWorkflow(ctx context.Context, def *workflow.Definition, wc *workflow.Context, opts ExecutionOptions) (*ExecutionResult, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if wc == nil {
		wc = workflow.NewContext(workflow.NewState(StatusCreated))
	}

	executionID := types.NewID()
	start := time.Now()

	// hash the caller's context view before the engine stamps per-run keys,
	// otherwise no two executions could ever share a cache key
	cacheKey := cache.Key(def.Name, def.Version, wc.Snapshot())

	wc.Set(workflow.KeyExecutionID, executionID.String())
	wc.Set(workflow.KeyExecutionStrategy, opts.Strategy)

	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "engine.execute_workflow",
			trace.WithAttributes(
				attribute.String("execution.id", executionID.String()),
				attribute.String("workflow.name", def.Name),
				attribute.String("workflow.version", def.Version),
			))
		defer span.End()
	}

	e.tracker.track(&ExecutionStatus{
		ExecutionID:  executionID,
		Status:       StatusCreated,
		WorkflowName: def.Name,
		Strategy:     opts.Strategy,
		StartTime:    start,
	})

	// the per-execution logger carries execution identity plus trace_id and
	// span_id when a span is active, so entries from concurrent engine
	// instances correlate with their traces
	execLogger := observability.NewExecutionLogger(e.logger.Handler(), executionID.String(), def.Name)
	logger := execLogger.WithContext(ctx)

	// cache lookup happens before any resource work so hits stay cheap
	if !opts.SkipCache {
		if cached, ok := e.cacheLookup(cacheKey, logger); ok {
			e.recordCacheLookup(def.Name, true)
			e.finish(ctx, executionID, StatusSucceeded, time.Since(start))
			logger.Info("execution served from cache")
			hit := *cached
			hit.FromCache = true
			return &hit, nil
		}
		e.recordCacheLookup(def.Name, false)
	}

	e.tracker.update(executionID, StatusOptimizing, time.Since(start))
	wc.SetState(workflow.NewState(StatusOptimizing))
	optimized := e.optimizer.Optimize(def)

	alloc, err := e.resources.Allocate(executionID, opts.Requirements)
	if err != nil {
		e.recordResourceRejection()
		e.recordExecution(def.Name, StatusFailed, 0, time.Since(start))
		e.finish(ctx, executionID, StatusFailed, time.Since(start))
		logger.Warn("resource allocation rejected", "error", err)
		return nil, err
	}
	defer func() {
		e.resources.Release(executionID)
		logger.Debug("resources released")
	}()

	e.tracker.update(executionID, StatusResourced, time.Since(start))
	wc.SetState(workflow.NewState(StatusResourced).WithAttribute("memory_mb", alloc.MemoryMB))

	scheduled := e.scheduler.Schedule(schedule.Request{
		ExecutionID:  executionID,
		StepCount:    len(optimized.Steps),
		Priority:     opts.Priority,
		Critical:     opts.Critical,
		Dependencies: opts.Dependencies,
	})
	e.tracker.update(executionID, StatusScheduled, time.Since(start))

	e.tracker.update(executionID, StatusExecuting, time.Since(start))
	wc.SetState(workflow.NewState(StatusExecuting))

	result := e.runSteps(ctx, optimized, wc, opts, logger)
	result.ExecutionID = executionID
	result.WorkflowName = def.Name
	result.Duration = time.Since(start)
	result.Scheduled = scheduled
	result.RequiresConfirmation = requiresConfirmation(opts.Strategy)

	status := StatusFailed
	if result.Success {
		status = StatusSucceeded
		if !opts.SkipCache {
			e.cache.Put(cacheKey, result)
		}
	}
	e.recordExecution(def.Name, status, len(result.StepResults), result.Duration)
	e.finish(ctx, executionID, status, result.Duration)

	logger.Info("execution finished",
		"success", result.Success,
		"steps", len(result.StepResults),
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// runSteps executes the step list strictly in order, stopping at the first
// validation or execution failure.
func (e *Engine) runSteps(ctx context.Context, def *workflow.Definition, wc *workflow.Context, opts ExecutionOptions, logger *slog.Logger) *ExecutionResult {
	result := &ExecutionResult{
		Success:     true,
		StepResults: make([]workflow.StepResult, 0, len(def.Steps)),
		History:     make([]HistoryEntry, 0, len(def.Steps)),
	}

	for i, spec := range def.Steps {
		if err := ctx.Err(); err != nil {
			cancelErr := types.WrapError(types.EXECUTION_CANCELLED, "execution cancelled between steps", err)
			result.Success = false
			result.Error = cancelErr.Error()
			logger.Warn("execution cancelled", "step_index", i)
			return result
		}

		stepResult := e.runStep(ctx, wc, spec, logger)
		result.StepResults = append(result.StepResults, stepResult)
		result.History = append(result.History, HistoryEntry{
			Index:     i,
			StepName:  spec.Name,
			Success:   stepResult.Success,
			Duration:  stepResult.Duration,
			Timestamp: time.Now(),
		})
		wc.Set(workflow.StepResultKey(i), stepResult)
		e.recordStepDuration(spec, stepResult.Duration)

		if !stepResult.Success {
			result.Success = false
			result.Error = stepResult.Error
			e.rollback(ctx, wc, opts, i, result, logger)
			return result
		}
	}
	return result
}

// runStep validates and executes one step under the per-step deadline.
// Every failure mode is folded into a failed StepResult: the loop above
// owns the decision to halt.
func (e *Engine) runStep(ctx context.Context, wc *workflow.Context, spec workflow.StepSpec, logger *slog.Logger) workflow.StepResult {
	step, err := e.registry.Resolve(spec.Type)
	if err != nil {
		return workflow.StepResult{StepName: spec.Name, Success: false, Error: err.Error()}
	}

	if v := step.Validate(ctx, wc, spec); !v.Valid {
		logger.Warn("step validation failed", "step", spec.Name, "errors", v.Errors)
		return workflow.StepResult{
			StepName: spec.Name,
			Success:  false,
			Error:    fmt.Sprintf("validation failed: %v", v.Errors),
		}
	}

	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	type outcome struct {
		result workflow.StepResult
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		r, execErr := step.Execute(stepCtx, wc, spec)
		done <- outcome{result: r, err: execErr}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			logger.Error("step execution errored", "step", spec.Name, "error", o.err)
			return workflow.StepResult{
				StepName: spec.Name,
				Success:  false,
				Error:    o.err.Error(),
				Duration: time.Since(start),
			}
		}
		return o.result
	case <-stepCtx.Done():
		// timeout is a failure mode, not a separate state
		timeoutErr := types.WrapError(types.EXECUTION_TIMEOUT,
			fmt.Sprintf("step %q exceeded timeout of %s", spec.Name, e.stepTimeout), stepCtx.Err())
		logger.Error("step timed out", "step", spec.Name, "timeout", e.stepTimeout)
		return workflow.StepResult{
			StepName: spec.Name,
			Success:  false,
			Error:    timeoutErr.Error(),
			Duration: time.Since(start),
		}
	}
}

// rollback invokes the configured rollback strategy. A rollback failure is
// logged and attached to the result; it never masks the original failure.
func (e *Engine) rollback(ctx context.Context, wc *workflow.Context, opts ExecutionOptions, failedIndex int, result *ExecutionResult, logger *slog.Logger) {
	if opts.Rollback == nil {
		return
	}
	if err := opts.Rollback(ctx, wc, failedIndex, result.StepResults); err != nil {
		rollbackErr := types.WrapError(types.ROLLBACK_FAILED, "rollback strategy failed", err)
		result.RollbackError = rollbackErr.Error()
		logger.Error("rollback failed", "failed_step_index", failedIndex, "error", err)
		return
	}
	logger.Info("rollback completed", "failed_step_index", failedIndex)
}

// cacheLookup fetches and type-asserts a cached result. An entry of the
// wrong shape is corrupt: it is evicted and treated as a miss, never
// surfaced to the caller.
func (e *Engine) cacheLookup(key string, logger *slog.Logger) (*ExecutionResult, bool) {
	raw, ok := e.cache.Get(key)
	if !ok {
		return nil, false
	}
	cached, ok := raw.(*ExecutionResult)
	if !ok {
		logger.Warn("evicting corrupt cache entry", "key", key)
		e.cache.Evict(key)
		return nil, false
	}
	return cached, true
}

// GetExecutionStatus returns the tracked status for an execution id.
func (e *Engine) GetExecutionStatus(id types.ID) (ExecutionStatus, bool) {
	return e.tracker.get(id)
}

// GetSystemMetrics reports current engine load.
func (e *Engine) GetSystemMetrics() SystemMetrics {
	m := SystemMetrics{
		ActiveExecutions:    e.resources.ActiveCount(),
		ResourceUtilization: e.resources.Utilization(),
	}
	if e.queue != nil {
		m.QueueLength = e.queue.Len()
	}
	return m
}

// finish records the terminal state on the tracker and the active span.
func (e *Engine) finish(ctx context.Context, id types.ID, status string, duration time.Duration) {
	e.tracker.update(id, status, duration)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		if status == StatusSucceeded {
			span.SetStatus(codes.Ok, "")
		} else {
			span.SetStatus(codes.Error, status)
		}
	}
}

func (e *Engine) recordExecution(workflowName, status string, steps int, duration time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordExecution(workflowName, status, steps, float64(duration.Milliseconds()))
	}
}

func (e *Engine) recordCacheLookup(workflowName string, hit bool) {
	if e.metrics != nil {
		e.metrics.RecordCacheLookup(workflowName, hit)
	}
}

func (e *Engine) recordResourceRejection() {
	if e.metrics != nil {
		e.metrics.RecordResourceRejection("allocation")
	}
}

func (e *Engine) recordStepDuration(spec workflow.StepSpec, d time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordHistogram(observability.MetricStepDuration,
			float64(d.Milliseconds()),
			map[string]string{"step": spec.Name, "type": spec.Type.String()})
	}
}

// requiresConfirmation resolves the policy flag for the strategy label.
// Unknown strategies report true, the conservative default.
func requiresConfirmation(strategy string) bool {
	if strategy == "" {
		return true
	}
	level, err := automation.ParseLevel(strategy)
	if err != nil {
		return true
	}
	policy, err := automation.PolicyFor(level)
	if err != nil {
		return true
	}
	return policy.RequiresConfirmation
}
