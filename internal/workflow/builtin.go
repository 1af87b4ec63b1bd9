package workflow

import (
	"context"
	"log/slog"
	"time"
)

// builtinTypes is the closed set of step kinds the engine understands out of
// the box. Anything else must be registered explicitly by the caller.
var builtinTypes = []StepType{
	StepAnalysis,
	StepRefactoring,
	StepTesting,
	StepDocumentation,
	StepValidation,
	StepDeployment,
	StepSecurity,
	StepOptimization,
	StepSetup,
	StepProcessing,
	StepCleanup,
}

// IsBuiltinType reports whether the step type is one of the builtin kinds.
func IsBuiltinType(t StepType) bool {
	for _, b := range builtinTypes {
		if t == b {
			return true
		}
	}
	return false
}

// BuiltinStep is the enum-dispatched implementation behind the builtin step
// kinds. It carries the kind as a tag rather than using a subtype per kind,
// since the set is closed and the kinds share their execution shape: check
// required parameters, run, and report the parameters as output.
type BuiltinStep struct {
	kind   StepType
	logger *slog.Logger
}

// NewBuiltinStep creates the builtin implementation for the given kind.
// A nil logger defaults to slog.Default().
func NewBuiltinStep(kind StepType, logger *slog.Logger) *BuiltinStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuiltinStep{kind: kind, logger: logger}
}

// Validate checks that the spec matches this step's kind and that required
// parameters for the kind are present.
func (s *BuiltinStep) Validate(_ context.Context, _ *Context, spec StepSpec) ValidationResult {
	if spec.Type != s.kind {
		return Invalid("step type mismatch: expected " + s.kind.String() + ", got " + spec.Type.String())
	}
	switch s.kind {
	case StepDeployment:
		if _, ok := spec.Parameters["target"]; !ok {
			return Invalid("deployment step requires a target parameter")
		}
	case StepRefactoring:
		if _, ok := spec.Parameters["path"]; !ok {
			return Invalid("refactoring step requires a path parameter")
		}
	}
	return ValidOK()
}

// Execute runs the builtin step. The default builtins are pass-through
// units: they record the step's parameters as output and tag the result
// with the kind, leaving real work to caller-registered implementations.
func (s *BuiltinStep) Execute(_ context.Context, wc *Context, spec StepSpec) (StepResult, error) {
	start := time.Now()

	output := make(map[string]any, len(spec.Parameters)+1)
	for k, v := range spec.Parameters {
		output[k] = v
	}
	output["kind"] = s.kind.String()

	s.logger.Debug("builtin step executed",
		"step", spec.Name,
		"kind", s.kind.String(),
		"execution_id", wc.GetString(KeyExecutionID))

	return StepResult{
		StepName: spec.Name,
		Success:  true,
		Output:   output,
		Duration: time.Since(start),
	}, nil
}

// RegisterBuiltins binds all builtin step kinds into the registry.
func RegisterBuiltins(registry *StepRegistry, logger *slog.Logger) {
	for _, kind := range builtinTypes {
		registry.Register(kind, NewBuiltinStep(kind, logger))
	}
}
