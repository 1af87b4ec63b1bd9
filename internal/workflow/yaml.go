// This file implements YAML parsing for workflow definitions, so workflows
// can be written in a human-readable format and loaded at startup.
//
// # YAML Structure Example
//
//	name: release-check
//	version: "1.2.0"
//	steps:
//	  - type: analysis
//	    name: scan-sources
//	    parameters:
//	      depth: full
//	  - type: testing
//	    name: run-suite
package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// yamlDefinition mirrors the on-disk YAML shape of a workflow definition.
type yamlDefinition struct {
	Name     string         `yaml:"name"`
	Version  string         `yaml:"version"`
	Steps    []yamlStep     `yaml:"steps"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type yamlStep struct {
	Type       string         `yaml:"type"`
	Name       string         `yaml:"name"`
	Parameters map[string]any `yaml:"parameters,omitempty"`
}

// ParseYAML decodes a workflow definition from YAML and validates it.
// Step parameters default to an empty map so steps never see a nil map.
func ParseYAML(data []byte) (*Definition, error) {
	var raw yamlDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, types.WrapError(types.WORKFLOW_INVALID, "failed to parse workflow YAML", err)
	}

	def := &Definition{
		Name:     raw.Name,
		Version:  raw.Version,
		Steps:    make([]StepSpec, 0, len(raw.Steps)),
		Metadata: raw.Metadata,
	}
	for _, s := range raw.Steps {
		params := s.Parameters
		if params == nil {
			params = make(map[string]any)
		}
		def.Steps = append(def.Steps, StepSpec{
			Type:       StepType(s.Type),
			Name:       s.Name,
			Parameters: params,
		})
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	for _, step := range def.Steps {
		if !IsBuiltinType(step.Type) {
			return nil, types.NewError(types.STEP_TYPE_UNKNOWN,
				fmt.Sprintf("unknown step type %q in step %q", step.Type, step.Name))
		}
	}
	return def, nil
}

// LoadFile reads and parses a workflow definition from a YAML file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.WORKFLOW_INVALID, "failed to read workflow file: "+path, err)
	}
	return ParseYAML(data)
}
