package task

import (
	"fmt"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// Type classifies the unit of work a workflow automates.
type Type string

const (
	TypeRefactor      Type = "refactor"
	TypeAnalysis      Type = "analysis"
	TypeTesting       Type = "testing"
	TypeDocumentation Type = "documentation"
	TypeDeployment    Type = "deployment"
	TypeSecurity      Type = "security"
	TypeOptimization  Type = "optimization"
	TypeValidation    Type = "validation"
)

// String returns the string representation of the task type.
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the task type is one of the defined constants.
func (t Type) IsValid() bool {
	switch t {
	case TypeRefactor, TypeAnalysis, TypeTesting, TypeDocumentation,
		TypeDeployment, TypeSecurity, TypeOptimization, TypeValidation:
		return true
	default:
		return false
	}
}

// Metadata carries the size measures used for confidence scoring.
// It is supplied by the caller and read-only to the core.
type Metadata struct {
	FileCount       int `json:"file_count"`
	LineCount       int `json:"line_count"`
	DependencyCount int `json:"dependency_count"`
}

// Task identifies a unit of work submitted for automated execution.
// Tasks are created by external callers and read-only to the core.
type Task struct {
	ID        types.ID `json:"id"`
	Type      Type     `json:"type"`
	ProjectID string   `json:"project_id"`
	UserID    string   `json:"user_id"`
	Metadata  Metadata `json:"metadata"`
}

// New creates a Task with a generated ID.
func New(taskType Type, projectID, userID string) *Task {
	return &Task{
		ID:        types.NewID(),
		Type:      taskType,
		ProjectID: projectID,
		UserID:    userID,
	}
}

// Validate checks the task for structural validity.
func (t *Task) Validate() error {
	if t == nil {
		return fmt.Errorf("task is nil")
	}
	if t.ID.IsZero() {
		return fmt.Errorf("task ID is required")
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("unknown task type: %s", t.Type)
	}
	return nil
}
