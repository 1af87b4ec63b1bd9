// Package queue provides a bounded FIFO queue for pending executions.
package queue

import (
	"sync"
	"time"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// Item is a queued execution reference.
type Item struct {
	ExecutionID  types.ID
	WorkflowName string
	EnqueuedAt   time.Time
}

// Stats is a point-in-time snapshot of queue state.
type Stats struct {
	Length int       `json:"length"`
	Oldest time.Time `json:"oldest,omitempty"`
	Newest time.Time `json:"newest,omitempty"`
}

// ExecutionQueue is a bounded FIFO of pending executions. Queue-full is an
// expected, recoverable condition: Enqueue reports false past capacity
// rather than erroring.
type ExecutionQueue struct {
	mu      sync.Mutex
	items   []Item
	maxSize int
}

// New creates a queue holding at most maxSize items. A non-positive maxSize
// falls back to a capacity of 100.
func New(maxSize int) *ExecutionQueue {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &ExecutionQueue{
		items:   make([]Item, 0, maxSize),
		maxSize: maxSize,
	}
}

// Enqueue appends an item, stamping its enqueue time. Returns false when
// the queue is at capacity.
func (q *ExecutionQueue) Enqueue(item Item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.maxSize {
		return false
	}
	item.EnqueuedAt = time.Now()
	q.items = append(q.items, item)
	return true
}

// Dequeue pops the oldest item. Returns false when the queue is empty.
func (q *ExecutionQueue) Dequeue() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Item{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len returns the number of queued items.
func (q *ExecutionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue has no items.
func (q *ExecutionQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear removes all queued items.
func (q *ExecutionQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}

// Stats returns a consistent snapshot of the queue's length and the enqueue
// timestamps of its oldest and newest items.
func (q *ExecutionQueue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	stats := Stats{Length: len(q.items)}
	if len(q.items) > 0 {
		stats.Oldest = q.items[0].EnqueuedAt
		stats.Newest = q.items[len(q.items)-1].EnqueuedAt
	}
	return stats
}
