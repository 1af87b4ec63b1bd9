package workflow

import (
	"sync"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// StepRegistry maps step types to their executable implementations. It is
// an explicitly constructed value owned by the composition root and injected
// into the engine, never an ambient global, so the engine stays testable
// with fakes.
type StepRegistry struct {
	mu    sync.RWMutex
	steps map[StepType]Step
}

// NewStepRegistry creates an empty registry.
func NewStepRegistry() *StepRegistry {
	return &StepRegistry{
		steps: make(map[StepType]Step),
	}
}

// Register binds a step implementation to a step type, replacing any
// previous binding.
func (r *StepRegistry) Register(stepType StepType, step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[stepType] = step
}

// Resolve returns the implementation for the step type, or a
// STEP_NOT_REGISTERED contract error when none is bound.
func (r *StepRegistry) Resolve(stepType StepType) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	step, ok := r.steps[stepType]
	if !ok {
		return nil, types.NewError(types.STEP_NOT_REGISTERED, "no step registered for type: "+stepType.String())
	}
	return step, nil
}

// Types returns the registered step types, in unspecified order.
func (r *StepRegistry) Types() []StepType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StepType, 0, len(r.steps))
	for t := range r.steps {
		out = append(out, t)
	}
	return out
}
