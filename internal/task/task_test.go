package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		valid bool
	}{
		{name: "analysis", typ: TypeAnalysis, valid: true},
		{name: "deployment", typ: TypeDeployment, valid: true},
		{name: "security", typ: TypeSecurity, valid: true},
		{name: "unknown", typ: Type("juggling"), valid: false},
		{name: "empty", typ: Type(""), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.typ.IsValid())
		})
	}
}

func TestTask_Validate(t *testing.T) {
	valid := New(TypeRefactor, "proj-1", "user-1")
	require.NoError(t, valid.Validate())

	var nilTask *Task
	assert.Error(t, nilTask.Validate())

	noID := &Task{Type: TypeRefactor}
	assert.Error(t, noID.Validate())

	badType := New(Type("nope"), "proj-1", "user-1")
	assert.Error(t, badType.Validate())
}
