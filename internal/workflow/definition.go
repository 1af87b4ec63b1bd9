// Package workflow defines workflow structures, the step contract, and the
// YAML codec for workflow definitions.
//
// A workflow is an ordered sequence of steps identified by (name, version).
// Definitions are immutable once built: transformations such as optimization
// produce a new Definition rather than mutating in place.
package workflow

import (
	"github.com/autopilot-sh/autopilot/internal/types"
)

// Definition is an ordered sequence of steps identified by (name, version).
type Definition struct {
	Name     string         `json:"name" yaml:"name"`
	Version  string         `json:"version" yaml:"version"`
	Steps    []StepSpec     `json:"steps" yaml:"steps"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Identity returns the cache and memoization key for the definition.
func (d *Definition) Identity() string {
	return d.Name + "@" + d.Version
}

// Clone returns a deep copy of the definition. Step parameters are copied
// one level deep, which is sufficient because optimizer rewrites only merge
// top-level parameter keys.
func (d *Definition) Clone() *Definition {
	clone := &Definition{
		Name:    d.Name,
		Version: d.Version,
		Steps:   make([]StepSpec, len(d.Steps)),
	}
	for i, step := range d.Steps {
		clone.Steps[i] = step.Clone()
	}
	if d.Metadata != nil {
		clone.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// Validate checks the definition for structural validity. A nil definition,
// an empty name or version, or a zero-step list are contract violations.
func (d *Definition) Validate() error {
	if d == nil {
		return types.NewError(types.WORKFLOW_NIL, "workflow definition is nil")
	}
	if d.Name == "" {
		return types.NewError(types.WORKFLOW_INVALID, "workflow name is required")
	}
	if d.Version == "" {
		return types.NewError(types.WORKFLOW_INVALID, "workflow version is required")
	}
	if len(d.Steps) == 0 {
		return types.NewError(types.WORKFLOW_EMPTY, "workflow must contain at least one step")
	}
	for i := range d.Steps {
		if err := d.Steps[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
