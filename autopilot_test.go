package autopilot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopilot-sh/autopilot/internal/automation"
	"github.com/autopilot-sh/autopilot/internal/task"
	"github.com/autopilot-sh/autopilot/internal/workflow"
)

func newCore(t *testing.T, opts ...Option) *Core {
	t.Helper()
	core, err := New(context.Background(), nil, opts...)
	require.NoError(t, err)
	return core
}

func TestNew_DefaultConfig(t *testing.T) {
	core := newCore(t)
	assert.NotNil(t, core)

	m := core.GetSystemMetrics()
	assert.Equal(t, 0, m.ActiveExecutions)
	assert.Equal(t, 0, m.QueueLength)
}

func TestCore_DetermineAutomationLevel(t *testing.T) {
	ctx := context.Background()
	core := newCore(t)

	deployment := task.New(task.TypeDeployment, "proj-1", "user-1")
	assert.Equal(t, automation.LevelManual, core.DetermineAutomationLevel(ctx, deployment))

	require.NoError(t, core.SetUserPreference(ctx, "user-1", automation.LevelFullAuto))
	assert.Equal(t, automation.LevelFullAuto, core.DetermineAutomationLevel(ctx, deployment))
}

func TestCore_ExecuteWorkflowEndToEnd(t *testing.T) {
	ctx := context.Background()
	core := newCore(t)

	def, err := ParseWorkflow([]byte(`
name: release-check
version: "1.0.0"
steps:
  - type: analysis
    name: scan
  - type: testing
    name: suite
`))
	require.NoError(t, err)

	tk := task.New(task.TypeAnalysis, "proj-1", "user-1")
	result, err := core.ExecuteWorkflow(ctx, tk, def, nil, ExecutionOptions{})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.StepResults, 2)
	// analysis tasks resolve to full_auto, which needs no confirmation
	assert.False(t, result.RequiresConfirmation)

	status, ok := core.GetExecutionStatus(result.ExecutionID)
	require.True(t, ok)
	assert.Equal(t, "succeeded", status.Status)
	assert.Equal(t, "release-check", status.WorkflowName)
	assert.Equal(t, "full_auto", status.Strategy)
}

func TestCore_CustomStepRegistration(t *testing.T) {
	ctx := context.Background()
	core := newCore(t)

	core.RegisterStep(workflow.StepType("echo"), &echoStep{})

	def := &Definition{
		Name:    "custom",
		Version: "1.0.0",
		Steps: []StepSpec{
			{Type: workflow.StepType("echo"), Name: "say", Parameters: map[string]any{"msg": "hi"}},
		},
	}

	tk := task.New(task.TypeValidation, "proj-1", "user-1")
	result, err := core.ExecuteWorkflow(ctx, tk, def, nil, ExecutionOptions{})

	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "hi", result.StepResults[0].Output["msg"])
}

func TestCore_QueueOperations(t *testing.T) {
	core := newCore(t)

	assert.True(t, core.EnqueueExecution(QueueItem{WorkflowName: "first"}))
	assert.True(t, core.EnqueueExecution(QueueItem{WorkflowName: "second"}))

	// queued work shows up in system metrics
	assert.Equal(t, 2, core.GetSystemMetrics().QueueLength)

	stats := core.QueueStats()
	assert.Equal(t, 2, stats.Length)
	assert.False(t, stats.Oldest.IsZero())

	item, ok := core.DequeueExecution()
	require.True(t, ok)
	assert.Equal(t, "first", item.WorkflowName)
	assert.Equal(t, 1, core.GetSystemMetrics().QueueLength)

	_, ok = core.DequeueExecution()
	require.True(t, ok)
	_, ok = core.DequeueExecution()
	assert.False(t, ok)
}

type echoStep struct{}

func (*echoStep) Validate(context.Context, *workflow.Context, workflow.StepSpec) workflow.ValidationResult {
	return workflow.ValidOK()
}

func (*echoStep) Execute(_ context.Context, _ *workflow.Context, spec workflow.StepSpec) (workflow.StepResult, error) {
	return workflow.StepResult{StepName: spec.Name, Success: true, Output: spec.Parameters}, nil
}
