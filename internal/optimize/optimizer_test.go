package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopilot-sh/autopilot/internal/workflow"
)

func defWithSteps(steps ...workflow.StepSpec) *workflow.Definition {
	return &workflow.Definition{Name: "wf", Version: "1.0.0", Steps: steps}
}

func TestCombineSimilarSteps(t *testing.T) {
	steps := []workflow.StepSpec{
		{Type: workflow.StepAnalysis, Name: "scan-a", Parameters: map[string]any{"depth": "full", "lang": "go"}},
		{Type: workflow.StepTesting, Name: "unit"},
		{Type: workflow.StepAnalysis, Name: "scan-b", Parameters: map[string]any{"depth": "shallow"}},
	}

	out, err := combineSimilarSteps(steps)
	require.NoError(t, err)
	require.Len(t, out, 2)

	combined := out[0]
	assert.Equal(t, workflow.StepAnalysis, combined.Type)
	assert.Equal(t, true, combined.Parameters[ParamCombined])
	assert.Equal(t, 2, combined.Parameters[ParamOriginalSteps])
	// later members overwrite earlier on key collision
	assert.Equal(t, "shallow", combined.Parameters["depth"])
	assert.Equal(t, "go", combined.Parameters["lang"])

	assert.Equal(t, "unit", out[1].Name)
}

func TestReorderByPhase(t *testing.T) {
	steps := []workflow.StepSpec{
		{Type: workflow.StepCleanup, Name: "sweep"},
		{Type: workflow.StepDeployment, Name: "ship"},
		{Type: workflow.StepSetup, Name: "prepare"},
		{Type: workflow.StepTesting, Name: "unit"},
		{Type: workflow.StepType("custom"), Name: "mystery"},
		{Type: workflow.StepValidation, Name: "check"},
	}

	out, err := reorderByPhase(steps)
	require.NoError(t, err)

	names := make([]string, len(out))
	for i, s := range out {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"prepare", "check", "unit", "ship", "sweep", "mystery"}, names)
}

func TestReorderByPhase_StableWithinPhase(t *testing.T) {
	steps := []workflow.StepSpec{
		{Type: workflow.StepAnalysis, Name: "first"},
		{Type: workflow.StepAnalysis, Name: "second"},
		{Type: workflow.StepAnalysis, Name: "third"},
	}

	out, err := reorderByPhase(steps)
	require.NoError(t, err)
	assert.Equal(t, "first", out[0].Name)
	assert.Equal(t, "second", out[1].Name)
	assert.Equal(t, "third", out[2].Name)
}

func TestRemoveRedundantSteps(t *testing.T) {
	steps := []workflow.StepSpec{
		{Type: workflow.StepProcessing, Name: "git_commit"},
		{Type: workflow.StepProcessing, Name: "git_push"},
		{Type: workflow.StepProcessing, Name: "git_commit"},
	}

	out, err := removeRedundantSteps(steps)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "git_commit", out[0].Name)
	assert.Equal(t, "git_push", out[1].Name)
}

func TestOptimizer_Idempotence(t *testing.T) {
	def := defWithSteps(
		workflow.StepSpec{Type: workflow.StepCleanup, Name: "sweep"},
		workflow.StepSpec{Type: workflow.StepAnalysis, Name: "scan"},
		workflow.StepSpec{Type: workflow.StepSetup, Name: "prepare"},
	)

	once := NewOptimizer(nil).Optimize(def)
	twice := NewOptimizer(nil).Optimize(once)

	assert.Equal(t, once.Steps, twice.Steps)
}

func TestOptimizer_InputNotMutated(t *testing.T) {
	def := defWithSteps(
		workflow.StepSpec{Type: workflow.StepCleanup, Name: "sweep"},
		workflow.StepSpec{Type: workflow.StepSetup, Name: "prepare"},
	)

	NewOptimizer(nil).Optimize(def)

	assert.Equal(t, "sweep", def.Steps[0].Name)
	assert.Equal(t, "prepare", def.Steps[1].Name)
}

func TestOptimizer_Memoization(t *testing.T) {
	o := NewOptimizer(nil)
	def := defWithSteps(workflow.StepSpec{Type: workflow.StepAnalysis, Name: "scan"})

	first := o.Optimize(def)
	second := o.Optimize(def)
	assert.Same(t, first, second)

	o.Invalidate(def.Name, def.Version)
	third := o.Optimize(def)
	assert.NotSame(t, first, third)
	assert.Equal(t, first.Steps, third.Steps)
}

func TestOptimizer_NilDefinition(t *testing.T) {
	assert.Nil(t, NewOptimizer(nil).Optimize(nil))
}
