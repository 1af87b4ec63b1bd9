package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CoreError
		want string
	}{
		{
			name: "without cause",
			err:  NewError(WORKFLOW_EMPTY, "workflow has no steps"),
			want: "[WORKFLOW_EMPTY] workflow has no steps",
		},
		{
			name: "with cause",
			err:  WrapError(CONFIG_LOAD_FAILED, "cannot read config", fmt.Errorf("permission denied")),
			want: "[CONFIG_LOAD_FAILED] cannot read config: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCoreError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := WrapError(CONFIG_LOAD_FAILED, "load failed", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestCoreError_Is_MatchesByCode(t *testing.T) {
	a := NewRetryableError(RESOURCE_EXHAUSTED, "memory limit reached")
	b := NewError(RESOURCE_EXHAUSTED, "different message, same code")
	c := NewError(WORKFLOW_EMPTY, "unrelated")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewRetryableError(RESOURCE_EXHAUSTED, "busy")))
	assert.False(t, IsRetryable(NewError(WORKFLOW_NIL, "nil workflow")))
	assert.False(t, IsRetryable(fmt.Errorf("plain error")))
	assert.False(t, IsRetryable(nil))
}

func TestIsRetryable_Wrapped(t *testing.T) {
	inner := NewRetryableError(RESOURCE_EXHAUSTED, "cpu budget exceeded")
	wrapped := fmt.Errorf("allocation: %w", inner)

	require.True(t, IsRetryable(wrapped))
}
