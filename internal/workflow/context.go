package workflow

import (
	"fmt"
	"time"
)

// Well-known context keys. Steps and the engine read and write these instead
// of scattering raw string literals through the code.
const (
	KeyExecutionID       = "execution_id"
	KeyExecutionStrategy = "execution_strategy"
	KeyTaskID            = "task_id"
	KeyProjectID         = "project_id"
)

// StepResultKey returns the context key under which the result of step i is
// stored, so later steps can read earlier outputs.
func StepResultKey(index int) string {
	return fmt.Sprintf("step_%d_result", index)
}

// State names a point in an execution's lifecycle with optional attributes.
// States are reassigned, never mutated in place: each transition replaces
// the context's state with a fresh value.
type State struct {
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// NewState creates a state with the given name and no attributes.
func NewState(name string) State {
	return State{Name: name}
}

// WithAttribute returns a copy of the state carrying the extra attribute.
func (s State) WithAttribute(key string, value any) State {
	attrs := make(map[string]any, len(s.Attributes)+1)
	for k, v := range s.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	return State{Name: s.Name, Attributes: attrs}
}

// Context is the mutable key/value store scoped to one execution. It is
// owned exclusively by a single execution and never shared across concurrent
// executions, so it needs no locking.
type Context struct {
	values    map[string]any
	state     State
	createdAt time.Time
	updatedAt time.Time
}

// NewContext creates an empty context in the given initial state.
func NewContext(initial State) *Context {
	now := time.Now()
	return &Context{
		values:    make(map[string]any),
		state:     initial,
		createdAt: now,
		updatedAt: now,
	}
}

// Get returns the value stored under key, if any.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString returns the string value stored under key, or "" when the key
// is absent or not a string.
func (c *Context) GetString(key string) string {
	if v, ok := c.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Set stores a value under key and bumps the updated timestamp.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
	c.updatedAt = time.Now()
}

// Delete removes the value under key.
func (c *Context) Delete(key string) {
	delete(c.values, key)
	c.updatedAt = time.Now()
}

// Keys returns the keys currently present, in unspecified order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns a shallow copy of the current values, used for cache key
// hashing so later mutations do not affect the captured view.
func (c *Context) Snapshot() map[string]any {
	snap := make(map[string]any, len(c.values))
	for k, v := range c.values {
		snap[k] = v
	}
	return snap
}

// State returns the current state.
func (c *Context) State() State {
	return c.state
}

// SetState replaces the current state and bumps the updated timestamp.
func (c *Context) SetState(s State) {
	c.state = s
	c.updatedAt = time.Now()
}

// CreatedAt returns when the context was created.
func (c *Context) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the context was last modified.
func (c *Context) UpdatedAt() time.Time {
	return c.updatedAt
}
