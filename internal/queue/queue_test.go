package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopilot-sh/autopilot/internal/types"
)

func TestExecutionQueue_FIFOOrder(t *testing.T) {
	q := New(10)

	first := Item{ExecutionID: types.NewID(), WorkflowName: "first"}
	second := Item{ExecutionID: types.NewID(), WorkflowName: "second"}
	require.True(t, q.Enqueue(first))
	require.True(t, q.Enqueue(second))

	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "first", got.WorkflowName)

	got, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "second", got.WorkflowName)

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestExecutionQueue_CapacityRejection(t *testing.T) {
	q := New(2)

	assert.True(t, q.Enqueue(Item{WorkflowName: "a"}))
	assert.True(t, q.Enqueue(Item{WorkflowName: "b"}))
	assert.False(t, q.Enqueue(Item{WorkflowName: "c"}))
	assert.Equal(t, 2, q.Len())

	// capacity frees up after a dequeue
	_, ok := q.Dequeue()
	require.True(t, ok)
	assert.True(t, q.Enqueue(Item{WorkflowName: "c"}))
}

func TestExecutionQueue_Clear(t *testing.T) {
	q := New(5)
	q.Enqueue(Item{WorkflowName: "a"})
	q.Enqueue(Item{WorkflowName: "b"})

	q.Clear()

	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())
}

func TestExecutionQueue_Stats(t *testing.T) {
	q := New(5)

	empty := q.Stats()
	assert.Equal(t, 0, empty.Length)
	assert.True(t, empty.Oldest.IsZero())

	q.Enqueue(Item{WorkflowName: "a"})
	q.Enqueue(Item{WorkflowName: "b"})

	stats := q.Stats()
	assert.Equal(t, 2, stats.Length)
	assert.False(t, stats.Oldest.IsZero())
	assert.False(t, stats.Newest.Before(stats.Oldest))
}
