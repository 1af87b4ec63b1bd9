package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopilot-sh/autopilot/internal/config"
	"github.com/autopilot-sh/autopilot/internal/task"
	"github.com/autopilot-sh/autopilot/internal/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Level
		wantErr bool
	}{
		{name: "manual", input: "manual", want: LevelManual},
		{name: "uppercase", input: "FULL_AUTO", want: LevelFullAuto},
		{name: "whitespace", input: "  adaptive ", want: LevelAdaptive},
		{name: "unknown", input: "turbo", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var coreErr *types.CoreError
				require.ErrorAs(t, err, &coreErr)
				assert.Equal(t, types.AUTOMATION_LEVEL_UNKNOWN, coreErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyFor(t *testing.T) {
	tests := []struct {
		level        Level
		threshold    float64
		confirmation bool
		review       bool
	}{
		{level: LevelManual, threshold: 0.0, confirmation: true, review: true},
		{level: LevelAssisted, threshold: 0.6, confirmation: true, review: true},
		{level: LevelSemiAuto, threshold: 0.7, confirmation: true, review: false},
		{level: LevelFullAuto, threshold: 0.8, confirmation: false, review: false},
		{level: LevelAdaptive, threshold: 0.75, confirmation: true, review: false},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			policy, err := PolicyFor(tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.threshold, policy.ConfidenceThreshold)
			assert.Equal(t, tt.confirmation, policy.RequiresConfirmation)
			assert.Equal(t, tt.review, policy.RequiresHumanReview)
		})
	}

	_, err := PolicyFor(Level("bogus"))
	assert.Error(t, err)
}

func defaultWeights() config.ConfidenceConfig {
	return config.ConfidenceConfig{
		ComplexityWeight: 0.30,
		HistoryWeight:    0.25,
		QualityWeight:    0.20,
		ExperienceWeight: 0.15,
		HealthWeight:     0.10,
	}
}

type stubHistory struct{ rate float64 }

func (s stubHistory) SuccessRate(context.Context, task.Type) (float64, error) { return s.rate, nil }

type stubAnalysis struct{ score float64 }

func (s stubAnalysis) QualityScore(context.Context, string) (float64, error) { return s.score, nil }

type stubUsers struct{ level float64 }

func (s stubUsers) ExperienceLevel(context.Context, string) (float64, error) { return s.level, nil }

type stubHealth struct{ score float64 }

func (s stubHealth) HealthScore(context.Context) (float64, error) { return s.score, nil }

type failingHistory struct{}

func (failingHistory) SuccessRate(context.Context, task.Type) (float64, error) {
	return 0, errors.New("repository offline")
}

func TestConfidenceCalculator_BoundsWithNoSources(t *testing.T) {
	calc := NewConfidenceCalculator(defaultWeights(), nil)
	tk := task.New(task.TypeDocumentation, "proj-1", "user-1")

	score := calc.Calculate(context.Background(), tk)

	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
	// every factor defaults to the neutral midpoint
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestConfidenceCalculator_FailingSourceUsesNeutral(t *testing.T) {
	calc := NewConfidenceCalculator(defaultWeights(), nil,
		WithTaskHistory(failingHistory{}),
		WithHealthService(stubHealth{score: 1.0}),
	)
	tk := task.New(task.TypeDocumentation, "proj-1", "user-1")

	score := calc.Calculate(context.Background(), tk)

	// history falls back to 0.5; health contributes its full weight
	want := 0.5*0.30 + 0.5*0.25 + 0.5*0.20 + 0.5*0.15 + 1.0*0.10
	assert.InDelta(t, want, score, 1e-9)
}

func TestConfidenceCalculator_AllSourcesPerfect(t *testing.T) {
	calc := NewConfidenceCalculator(defaultWeights(), nil,
		WithTaskHistory(stubHistory{rate: 1.0}),
		WithAnalysisService(stubAnalysis{score: 1.0}),
		WithUserProfile(stubUsers{level: 1.0}),
		WithHealthService(stubHealth{score: 1.0}),
	)
	tk := task.New(task.TypeDocumentation, "proj-1", "user-1")
	tk.Metadata = task.Metadata{FileCount: 1, LineCount: 10, DependencyCount: 1}

	score := calc.Calculate(context.Background(), tk)

	assert.Greater(t, score, 0.9)
	assert.LessOrEqual(t, score, 1.0)
}

func TestConfidenceCalculator_NilTask(t *testing.T) {
	calc := NewConfidenceCalculator(defaultWeights(), nil)
	assert.Equal(t, 0.5, calc.Calculate(context.Background(), nil))
}

// fixedScorer always reports the same confidence score.
type fixedScorer float64

func (f fixedScorer) Calculate(context.Context, *task.Task) float64 { return float64(f) }

func TestManager_UserPreferenceBeatsProjectSetting(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPreferenceStore()
	m := NewManager(nil, store, nil)

	require.NoError(t, m.SetProjectSetting(ctx, "proj-1", LevelFullAuto))
	require.NoError(t, m.SetUserPreference(ctx, "user-1", LevelManual))

	tk := task.New(task.TypeDocumentation, "proj-1", "user-1")
	assert.Equal(t, LevelManual, m.DetermineLevel(ctx, tk))
}

func TestManager_ProjectSettingBeatsTaskTypeDefault(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, nil, nil)

	require.NoError(t, m.SetProjectSetting(ctx, "proj-1", LevelAssisted))

	// deployment would default to manual without the project setting
	tk := task.New(task.TypeDeployment, "proj-1", "user-1")
	assert.Equal(t, LevelAssisted, m.DetermineLevel(ctx, tk))
}

func TestManager_TaskTypeDefaults(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, nil, nil)

	deployment := task.New(task.TypeDeployment, "proj-1", "user-1")
	assert.Equal(t, LevelManual, m.DetermineLevel(ctx, deployment))

	analysis := task.New(task.TypeAnalysis, "proj-1", "user-1")
	assert.Equal(t, LevelFullAuto, m.DetermineLevel(ctx, analysis))
}

func TestManager_ConfidenceThresholdBoundary(t *testing.T) {
	ctx := context.Background()

	// documentation has no task-type default, so the confidence gate decides
	tk := task.New(task.TypeDocumentation, "", "")

	atBoundary := NewManager(fixedScorer(0.8), nil, nil)
	assert.Equal(t, LevelFullAuto, atBoundary.DetermineLevel(ctx, tk))

	belowBoundary := NewManager(fixedScorer(0.79), nil, nil)
	assert.Equal(t, LevelSemiAuto, belowBoundary.DetermineLevel(ctx, tk))
}

func TestManager_RuleEngineFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	rules := []Rule{
		{
			Name:    "large-tasks-need-assistance",
			Applies: func(t *task.Task) bool { return t.Metadata.FileCount > 10 },
			Level:   LevelAssisted,
		},
		{
			Name:    "catch-all-adaptive",
			Applies: func(t *task.Task) bool { return true },
			Level:   LevelAdaptive,
		},
	}
	m := NewManager(nil, nil, nil, WithRules(rules))

	large := task.New(task.TypeDocumentation, "", "")
	large.Metadata.FileCount = 25
	assert.Equal(t, LevelAssisted, m.DetermineLevel(ctx, large))

	small := task.New(task.TypeDocumentation, "", "")
	assert.Equal(t, LevelAdaptive, m.DetermineLevel(ctx, small))
}

func TestManager_GlobalDefault(t *testing.T) {
	ctx := context.Background()

	m := NewManager(nil, nil, nil)
	tk := task.New(task.TypeDocumentation, "", "")
	assert.Equal(t, LevelSemiAuto, m.DetermineLevel(ctx, tk))

	overridden := NewManager(nil, nil, nil, WithDefaultLevel(LevelManual))
	assert.Equal(t, LevelManual, overridden.DetermineLevel(ctx, tk))
}

type failingStore struct {
	*MemoryPreferenceStore
}

func (failingStore) SetUserPreference(context.Context, string, Level) error {
	return errors.New("disk full")
}

func TestManager_PersistFailureSurfaced(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, failingStore{NewMemoryPreferenceStore()}, nil)

	err := m.SetUserPreference(ctx, "user-1", LevelManual)

	require.Error(t, err)
	var coreErr *types.CoreError
	require.ErrorAs(t, err, &coreErr)
	assert.Equal(t, types.PREFERENCE_PERSIST_FAILED, coreErr.Code)

	// the failed preference must not leak into resolution
	tk := task.New(task.TypeDocumentation, "", "user-1")
	assert.Equal(t, LevelSemiAuto, m.DetermineLevel(ctx, tk))
}

func TestManager_InvalidLevelRejected(t *testing.T) {
	m := NewManager(nil, nil, nil)
	assert.Error(t, m.SetUserPreference(context.Background(), "user-1", Level("warp")))
	assert.Error(t, m.SetProjectSetting(context.Background(), "proj-1", Level("warp")))
}
