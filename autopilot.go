// Package autopilot is the composition root for the workflow automation
// core. It wires the automation manager, execution engine, and their
// collaborators from a single configuration and exposes the caller-facing
// surface: determining automation levels, executing workflows, and
// inspecting execution status and system load.
package autopilot

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/autopilot-sh/autopilot/internal/automation"
	"github.com/autopilot-sh/autopilot/internal/cache"
	"github.com/autopilot-sh/autopilot/internal/config"
	"github.com/autopilot-sh/autopilot/internal/engine"
	"github.com/autopilot-sh/autopilot/internal/observability"
	"github.com/autopilot-sh/autopilot/internal/optimize"
	"github.com/autopilot-sh/autopilot/internal/queue"
	"github.com/autopilot-sh/autopilot/internal/resource"
	"github.com/autopilot-sh/autopilot/internal/schedule"
	"github.com/autopilot-sh/autopilot/internal/task"
	"github.com/autopilot-sh/autopilot/internal/types"
	"github.com/autopilot-sh/autopilot/internal/workflow"
)

// Re-exported types so callers work against a single import path.
type (
	Task             = task.Task
	TaskType         = task.Type
	TaskMetadata     = task.Metadata
	AutomationLevel  = automation.Level
	Definition       = workflow.Definition
	StepSpec         = workflow.StepSpec
	WorkflowContext  = workflow.Context
	ExecutionOptions = engine.ExecutionOptions
	ExecutionResult  = engine.ExecutionResult
	ExecutionStatus  = engine.ExecutionStatus
	SystemMetrics    = engine.SystemMetrics
	QueueItem        = queue.Item
	QueueStats       = queue.Stats
)

// NewTask creates a task with a generated id.
func NewTask(taskType TaskType, projectID, userID string) *Task {
	return task.New(taskType, projectID, userID)
}

// Core is the assembled automation system. Construct one per process with
// New; it is safe for concurrent use.
type Core struct {
	cfg      *config.Config
	logger   *slog.Logger
	manager  *automation.Manager
	engine   *engine.Engine
	registry *workflow.StepRegistry
	queue    *queue.ExecutionQueue
}

// Option configures a Core during construction.
type Option func(*coreDeps)

type coreDeps struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	store    automation.PreferenceStore
	rules    []automation.Rule
	calcOpts []automation.CalculatorOption
}

// WithLogger overrides the default text logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *coreDeps) { d.logger = logger }
}

// WithTracer enables span creation on the engine.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *coreDeps) { d.tracer = tracer }
}

// WithPreferenceStore attaches an external preference store. Without one,
// preferences live in memory only.
func WithPreferenceStore(store automation.PreferenceStore) Option {
	return func(d *coreDeps) { d.store = store }
}

// WithRules installs the ordered automation rule list.
func WithRules(rules []automation.Rule) Option {
	return func(d *coreDeps) { d.rules = rules }
}

// WithConfidenceSources attaches the external confidence data sources.
func WithConfidenceSources(opts ...automation.CalculatorOption) Option {
	return func(d *coreDeps) { d.calcOpts = append(d.calcOpts, opts...) }
}

// New assembles a Core from configuration. Metrics are initialized per the
// config; with metrics disabled a no-op provider is used.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Core, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := config.NewConfigValidator().Validate(cfg); err != nil {
		return nil, err
	}

	deps := &coreDeps{}
	for _, opt := range opts {
		opt(deps)
	}
	if deps.logger == nil {
		deps.logger = slog.New(observability.NewHandler(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
	}

	meterProvider, err := observability.InitMetrics(ctx, cfg.Metrics)
	if err != nil {
		return nil, err
	}
	recorder := observability.NewMetricsRecorder(meterProvider.Meter("autopilot"))

	calculator := automation.NewConfidenceCalculator(cfg.Confidence, deps.logger, deps.calcOpts...)

	defaultLevel, err := automation.ParseLevel(cfg.Automation.DefaultLevel)
	if err != nil {
		return nil, err
	}
	manager := automation.NewManager(calculator, deps.store, deps.logger,
		automation.WithRules(deps.rules),
		automation.WithDefaultLevel(defaultLevel))

	registry := workflow.NewStepRegistry()
	workflow.RegisterBuiltins(registry, deps.logger)

	execQueue := queue.New(cfg.Queue.MaxSize)

	engineOpts := []engine.EngineOption{
		engine.WithMetrics(recorder),
		engine.WithQueue(execQueue),
	}
	if deps.tracer != nil {
		engineOpts = append(engineOpts, engine.WithTracer(deps.tracer))
	}

	eng := engine.New(
		cfg.Engine,
		registry,
		optimize.NewOptimizer(deps.logger),
		resource.NewManager(cfg.Resources, deps.logger),
		schedule.NewScheduler(cfg.Scheduler.PerStepEstimate),
		cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries, deps.logger),
		deps.logger,
		engineOpts...,
	)

	return &Core{
		cfg:      cfg,
		logger:   deps.logger,
		manager:  manager,
		engine:   eng,
		registry: registry,
		queue:    execQueue,
	}, nil
}

// RegisterStep binds a custom step implementation to a step type.
func (c *Core) RegisterStep(stepType workflow.StepType, step workflow.Step) {
	c.registry.Register(stepType, step)
}

// DetermineAutomationLevel resolves the automation level for the task.
func (c *Core) DetermineAutomationLevel(ctx context.Context, t *Task) AutomationLevel {
	return c.manager.DetermineLevel(ctx, t)
}

// SetUserPreference persists an explicit automation preference for a user.
func (c *Core) SetUserPreference(ctx context.Context, userID string, level AutomationLevel) error {
	return c.manager.SetUserPreference(ctx, userID, level)
}

// SetProjectSetting persists an explicit automation setting for a project.
func (c *Core) SetProjectSetting(ctx context.Context, projectID string, level AutomationLevel) error {
	return c.manager.SetProjectSetting(ctx, projectID, level)
}

// ExecuteWorkflow resolves the automation strategy for the task and runs
// the workflow through the engine.
func (c *Core) ExecuteWorkflow(ctx context.Context, t *Task, def *Definition, wc *WorkflowContext, opts ExecutionOptions) (*ExecutionResult, error) {
	if opts.Strategy == "" {
		opts.Strategy = c.manager.DetermineLevel(ctx, t).String()
	}
	if wc == nil {
		wc = workflow.NewContext(workflow.NewState("created"))
	}
	if t != nil {
		wc.Set(workflow.KeyTaskID, t.ID.String())
		wc.Set(workflow.KeyProjectID, t.ProjectID)
	}
	return c.engine.ExecuteWorkflow(ctx, def, wc, opts)
}

// GetExecutionStatus returns the tracked status for an execution id.
func (c *Core) GetExecutionStatus(id types.ID) (ExecutionStatus, bool) {
	return c.engine.GetExecutionStatus(id)
}

// GetSystemMetrics reports current system load.
func (c *Core) GetSystemMetrics() SystemMetrics {
	return c.engine.GetSystemMetrics()
}

// EnqueueExecution adds a pending execution reference to the bounded queue.
// It reports false when the queue is at capacity. The sequential engine does
// not drain the queue itself; callers own when queued work is dequeued and
// submitted to ExecuteWorkflow.
func (c *Core) EnqueueExecution(item QueueItem) bool {
	return c.queue.Enqueue(item)
}

// DequeueExecution pops the oldest pending execution reference, reporting
// false when the queue is empty.
func (c *Core) DequeueExecution() (QueueItem, bool) {
	return c.queue.Dequeue()
}

// QueueStats returns a snapshot of the pending-execution queue.
func (c *Core) QueueStats() QueueStats {
	return c.queue.Stats()
}

// LoadWorkflow parses a workflow definition from a YAML file.
func LoadWorkflow(path string) (*Definition, error) {
	return workflow.LoadFile(path)
}

// ParseWorkflow parses a workflow definition from YAML bytes.
func ParseWorkflow(data []byte) (*Definition, error) {
	return workflow.ParseYAML(data)
}
