// Package schedule assigns advisory priority and duration metadata to
// executions. Scheduling output does not gate execution order in the
// sequential engine; it exists for inspection and for future parallel
// extensions.
package schedule

import (
	"time"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// Priority labels accepted from caller options.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

const (
	basePriority      = 1
	criticalBonus     = 10
	highPriorityBonus = 5
)

// Request carries the inputs the scheduler needs from one execution.
type Request struct {
	ExecutionID  types.ID
	StepCount    int
	Priority     string
	Critical     bool
	Dependencies []types.ID
}

// ScheduledExecution is the scheduler's advisory output for one execution.
// It lives only for the duration of that execution.
type ScheduledExecution struct {
	ExecutionID       types.ID      `json:"execution_id"`
	Priority          int           `json:"priority"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
	Dependencies      []types.ID    `json:"dependencies,omitempty"`
}

// Scheduler computes scheduling metadata. It is stateless; the per-step
// estimate is fixed at construction.
type Scheduler struct {
	perStepEstimate time.Duration
}

// NewScheduler creates a scheduler using the given per-step duration
// estimate. A non-positive estimate falls back to 30 seconds.
func NewScheduler(perStepEstimate time.Duration) *Scheduler {
	if perStepEstimate <= 0 {
		perStepEstimate = 30 * time.Second
	}
	return &Scheduler{perStepEstimate: perStepEstimate}
}

// Schedule computes priority and estimated duration for the request.
// Priority starts at 1, +10 for critical executions, +5 for high priority.
// The duration estimate is a coarse per-step heuristic. Dependencies are
// copied verbatim from the request.
func (s *Scheduler) Schedule(req Request) ScheduledExecution {
	priority := basePriority
	if req.Critical {
		priority += criticalBonus
	}
	if req.Priority == PriorityHigh {
		priority += highPriorityBonus
	}

	deps := make([]types.ID, len(req.Dependencies))
	copy(deps, req.Dependencies)

	return ScheduledExecution{
		ExecutionID:       req.ExecutionID,
		Priority:          priority,
		EstimatedDuration: time.Duration(req.StepCount) * s.perStepEstimate,
		Dependencies:      deps,
	}
}
