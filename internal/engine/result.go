package engine

import (
	"time"

	"github.com/autopilot-sh/autopilot/internal/schedule"
	"github.com/autopilot-sh/autopilot/internal/types"
	"github.com/autopilot-sh/autopilot/internal/workflow"
)

// HistoryEntry records one step attempt. One entry exists per attempted
// step, in execution order; steps skipped by early termination have none.
type HistoryEntry struct {
	Index     int           `json:"index"`
	StepName  string        `json:"step_name"`
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// ExecutionResult is the immutable outcome of one workflow execution.
// Business failures are reported here with Success=false, never as errors.
type ExecutionResult struct {
	ExecutionID  types.ID              `json:"execution_id"`
	WorkflowName string                `json:"workflow_name"`
	Success      bool                  `json:"success"`
	StepResults  []workflow.StepResult `json:"step_results"`
	History      []HistoryEntry        `json:"history"`
	Duration     time.Duration         `json:"duration"`
	Error        string                `json:"error,omitempty"`

	// RollbackError carries a rollback failure as auxiliary information.
	// It never masks the original failure.
	RollbackError string `json:"rollback_error,omitempty"`

	// RequiresConfirmation reflects the automation policy of the strategy
	// this execution ran under. Awaiting confirmation is the caller's
	// concern; the engine only exposes the flag.
	RequiresConfirmation bool `json:"requires_confirmation"`

	// FromCache marks results served from the execution cache.
	FromCache bool `json:"from_cache"`

	// Scheduled is the advisory scheduling metadata for inspection.
	Scheduled schedule.ScheduledExecution `json:"scheduled"`
}
