package automation

import (
	"context"
	"log/slog"

	"github.com/autopilot-sh/autopilot/internal/config"
	"github.com/autopilot-sh/autopilot/internal/task"
)

// neutralScore is used for any factor whose data source is missing or errors.
// Confidence must always resolve to a number, never fail.
const neutralScore = 0.5

// TaskHistory looks up the historical success rate for a task type.
// Implementations are external; nil is treated as unavailable.
type TaskHistory interface {
	// SuccessRate returns the fraction of past executions of this task
	// type that succeeded, in [0,1].
	SuccessRate(ctx context.Context, taskType task.Type) (float64, error)
}

// AnalysisService provides a code quality score for a project.
type AnalysisService interface {
	// QualityScore returns a normalized quality measure in [0,1].
	QualityScore(ctx context.Context, projectID string) (float64, error)
}

// UserProfile provides a caller experience score.
type UserProfile interface {
	// ExperienceLevel returns the user's normalized experience in [0,1].
	ExperienceLevel(ctx context.Context, userID string) (float64, error)
}

// HealthService reports current system health.
type HealthService interface {
	// HealthScore returns a normalized health measure in [0,1], where 1
	// means the system is fully healthy and unloaded.
	HealthScore(ctx context.Context) (float64, error)
}

// ConfidenceScorer produces a [0,1] confidence score for a task. Satisfied
// by ConfidenceCalculator; the interface exists so the manager can be tested
// with fixed scores.
type ConfidenceScorer interface {
	Calculate(ctx context.Context, t *task.Task) float64
}

// ConfidenceCalculator computes a 0-1 confidence score for a task from five
// weighted factors. All data sources are optional; an absent or failing
// source contributes the neutral midpoint instead of an error.
type ConfidenceCalculator struct {
	weights config.ConfidenceConfig
	logger  *slog.Logger

	history  TaskHistory
	analysis AnalysisService
	users    UserProfile
	health   HealthService
}

// CalculatorOption configures a ConfidenceCalculator.
type CalculatorOption func(*ConfidenceCalculator)

// WithTaskHistory attaches a historical success rate source.
func WithTaskHistory(h TaskHistory) CalculatorOption {
	return func(c *ConfidenceCalculator) { c.history = h }
}

// WithAnalysisService attaches a code quality source.
func WithAnalysisService(a AnalysisService) CalculatorOption {
	return func(c *ConfidenceCalculator) { c.analysis = a }
}

// WithUserProfile attaches a user experience source.
func WithUserProfile(u UserProfile) CalculatorOption {
	return func(c *ConfidenceCalculator) { c.users = u }
}

// WithHealthService attaches a system health source.
func WithHealthService(h HealthService) CalculatorOption {
	return func(c *ConfidenceCalculator) { c.health = h }
}

// NewConfidenceCalculator creates a calculator with the given factor weights.
// A nil logger defaults to slog.Default().
func NewConfidenceCalculator(weights config.ConfidenceConfig, logger *slog.Logger, opts ...CalculatorOption) *ConfidenceCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &ConfidenceCalculator{
		weights: weights,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate computes the weighted confidence score for the task.
// The result is always in [0,1] inclusive.
func (c *ConfidenceCalculator) Calculate(ctx context.Context, t *task.Task) float64 {
	if t == nil {
		return neutralScore
	}

	complexity := complexityScore(t.Metadata)
	history := c.historyScore(ctx, t.Type)
	quality := c.qualityScore(ctx, t.ProjectID)
	experience := c.experienceScore(ctx, t.UserID)
	health := c.healthScore(ctx)

	score := complexity*c.weights.ComplexityWeight +
		history*c.weights.HistoryWeight +
		quality*c.weights.QualityWeight +
		experience*c.weights.ExperienceWeight +
		health*c.weights.HealthWeight

	return clamp01(score)
}

// complexityScore derives a simplicity measure from task size metadata.
// Smaller tasks score higher. A task with no metadata at all scores neutral,
// since zero counts mean "unknown" rather than "trivial".
func complexityScore(m task.Metadata) float64 {
	if m.FileCount == 0 && m.LineCount == 0 && m.DependencyCount == 0 {
		return neutralScore
	}

	fileScore := 1.0 - ratio(m.FileCount, 50)
	lineScore := 1.0 - ratio(m.LineCount, 5000)
	depScore := 1.0 - ratio(m.DependencyCount, 20)

	return (fileScore + lineScore + depScore) / 3.0
}

func (c *ConfidenceCalculator) historyScore(ctx context.Context, taskType task.Type) float64 {
	if c.history == nil {
		return neutralScore
	}
	rate, err := c.history.SuccessRate(ctx, taskType)
	if err != nil {
		c.logger.Debug("task history unavailable, using neutral score",
			"task_type", taskType.String(), "error", err)
		return neutralScore
	}
	return clamp01(rate)
}

func (c *ConfidenceCalculator) qualityScore(ctx context.Context, projectID string) float64 {
	if c.analysis == nil || projectID == "" {
		return neutralScore
	}
	score, err := c.analysis.QualityScore(ctx, projectID)
	if err != nil {
		c.logger.Debug("analysis service unavailable, using neutral score",
			"project_id", projectID, "error", err)
		return neutralScore
	}
	return clamp01(score)
}

func (c *ConfidenceCalculator) experienceScore(ctx context.Context, userID string) float64 {
	if c.users == nil || userID == "" {
		return neutralScore
	}
	score, err := c.users.ExperienceLevel(ctx, userID)
	if err != nil {
		c.logger.Debug("user profile unavailable, using neutral score",
			"user_id", userID, "error", err)
		return neutralScore
	}
	return clamp01(score)
}

func (c *ConfidenceCalculator) healthScore(ctx context.Context) float64 {
	if c.health == nil {
		return neutralScore
	}
	score, err := c.health.HealthScore(ctx)
	if err != nil {
		c.logger.Debug("health service unavailable, using neutral score", "error", err)
		return neutralScore
	}
	return clamp01(score)
}

func ratio(value, limit int) float64 {
	if value >= limit {
		return 1.0
	}
	if value <= 0 {
		return 0.0
	}
	return float64(value) / float64(limit)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
