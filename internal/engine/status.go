package engine

import (
	"sync"
	"time"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// Execution lifecycle states. Terminal states are StatusSucceeded and
// StatusFailed; pause/resume is a higher-level feature that does not exist
// in this core.
const (
	StatusCreated    = "created"
	StatusOptimizing = "optimizing"
	StatusResourced  = "resourced"
	StatusScheduled  = "scheduled"
	StatusExecuting  = "executing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
)

// ExecutionStatus is the inspectable state of one execution, retained for a
// bounded number of recent executions after they finish.
type ExecutionStatus struct {
	ExecutionID  types.ID      `json:"execution_id"`
	Status       string        `json:"status"`
	WorkflowName string        `json:"workflow_name"`
	Strategy     string        `json:"strategy"`
	StartTime    time.Time     `json:"start_time"`
	Duration     time.Duration `json:"duration"`
}

// statusTracker retains recent execution statuses behind an RWMutex. When
// the retention bound is hit, the oldest tracked execution is dropped.
type statusTracker struct {
	mu       sync.RWMutex
	statuses map[types.ID]*ExecutionStatus
	order    []types.ID
	maxSize  int
}

func newStatusTracker(maxSize int) *statusTracker {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &statusTracker{
		statuses: make(map[types.ID]*ExecutionStatus),
		order:    make([]types.ID, 0, maxSize),
		maxSize:  maxSize,
	}
}

func (t *statusTracker) track(status *ExecutionStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.statuses[status.ExecutionID]; !exists {
		if len(t.order) >= t.maxSize {
			oldest := t.order[0]
			t.order = t.order[1:]
			delete(t.statuses, oldest)
		}
		t.order = append(t.order, status.ExecutionID)
	}
	t.statuses[status.ExecutionID] = status
}

func (t *statusTracker) update(id types.ID, status string, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.statuses[id]; ok {
		s.Status = status
		s.Duration = duration
	}
}

func (t *statusTracker) get(id types.ID) (ExecutionStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.statuses[id]
	if !ok {
		return ExecutionStatus{}, false
	}
	return *s, true
}
