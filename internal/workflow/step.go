package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// StepType classifies a step. The set of builtin kinds is closed; custom
// types may be registered through a StepRegistry.
type StepType string

const (
	StepAnalysis      StepType = "analysis"
	StepRefactoring   StepType = "refactoring"
	StepTesting       StepType = "testing"
	StepDocumentation StepType = "documentation"
	StepValidation    StepType = "validation"
	StepDeployment    StepType = "deployment"
	StepSecurity      StepType = "security"
	StepOptimization  StepType = "optimization"
	StepSetup         StepType = "setup"
	StepProcessing    StepType = "processing"
	StepCleanup       StepType = "cleanup"
)

// String returns the string representation of the step type.
func (t StepType) String() string {
	return string(t)
}

// phasePriority orders step types by execution phase for the optimizer's
// reorder rule. Unknown types sort last.
var phasePriority = map[StepType]int{
	StepSetup:         1,
	StepValidation:    2,
	StepAnalysis:      3,
	StepProcessing:    4,
	StepRefactoring:   4,
	StepOptimization:  4,
	StepDocumentation: 4,
	StepSecurity:      4,
	StepTesting:       5,
	StepDeployment:    6,
	StepCleanup:       7,
}

// unknownPhasePriority sorts step types outside the phase table last.
const unknownPhasePriority = 999

// PhasePriority returns the phase ordering rank for the step type.
func PhasePriority(t StepType) int {
	if p, ok := phasePriority[t]; ok {
		return p
	}
	return unknownPhasePriority
}

// StepSpec describes one step within a workflow definition.
type StepSpec struct {
	Type       StepType       `json:"type" yaml:"type"`
	Name       string         `json:"name" yaml:"name"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Key returns the (type, name) identity used for redundancy elimination.
func (s StepSpec) Key() string {
	return string(s.Type) + "/" + s.Name
}

// Clone returns a copy with a shallow copy of the parameter map.
func (s StepSpec) Clone() StepSpec {
	clone := StepSpec{Type: s.Type, Name: s.Name}
	if s.Parameters != nil {
		clone.Parameters = make(map[string]any, len(s.Parameters))
		for k, v := range s.Parameters {
			clone.Parameters[k] = v
		}
	}
	return clone
}

// Validate checks the spec for structural validity.
func (s StepSpec) Validate() error {
	if s.Type == "" {
		return types.NewError(types.WORKFLOW_INVALID, "step type is required")
	}
	if s.Name == "" {
		return types.NewError(types.WORKFLOW_INVALID, fmt.Sprintf("step of type %q has no name", s.Type))
	}
	return nil
}

// ValidationResult reports whether a step's preconditions hold against the
// current context.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidOK returns a passing validation result.
func ValidOK() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid returns a failing validation result with the given reasons.
func Invalid(reasons ...string) ValidationResult {
	return ValidationResult{Valid: false, Errors: reasons}
}

// StepResult is the outcome of executing one step.
type StepResult struct {
	StepName string         `json:"step_name"`
	Success  bool           `json:"success"`
	Output   map[string]any `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Step is the executable unit behind a StepSpec. Implementations validate
// their preconditions against the context before Execute is attempted.
type Step interface {
	// Execute runs the step against the context. Business failures are
	// reported through StepResult.Success, not through the error return,
	// which is reserved for infrastructure faults.
	Execute(ctx context.Context, wc *Context, spec StepSpec) (StepResult, error)

	// Validate checks preconditions against the context without side effects.
	Validate(ctx context.Context, wc *Context, spec StepSpec) ValidationResult
}

// RollbackFunc undoes the effects of a partially executed workflow. It
// receives the index of the last attempted step and the partial results.
type RollbackFunc func(ctx context.Context, wc *Context, failedIndex int, partial []StepResult) error
