// Package optimize rewrites workflow step lists before execution.
package optimize

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/autopilot-sh/autopilot/internal/workflow"
)

// Parameter keys stamped onto synthesized steps by the combine rule.
const (
	ParamCombined      = "combined"
	ParamOriginalSteps = "originalSteps"
)

// rewriteRule is one idempotent step-list transformation. Rules are
// individually fallible and skip-on-error: a failing rule never aborts
// optimization.
type rewriteRule struct {
	name  string
	apply func(steps []workflow.StepSpec) ([]workflow.StepSpec, error)
}

// Optimizer applies a fixed rule sequence to a workflow definition and
// memoizes results per workflow identity (name@version).
//
// Memoization caveat: the memo assumes a workflow identity always refers to
// the same definition. If an identity is reused for a semantically different
// definition, callers must call Invalidate first or the stale optimized copy
// is returned.
type Optimizer struct {
	rules  []rewriteRule
	logger *slog.Logger

	mu   sync.RWMutex
	memo map[string]*workflow.Definition
}

// NewOptimizer creates an optimizer with the standard rule sequence:
// combine similar steps, reorder by phase priority, remove redundant steps.
// A nil logger defaults to slog.Default().
func NewOptimizer(logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Optimizer{
		logger: logger,
		memo:   make(map[string]*workflow.Definition),
	}
	o.rules = []rewriteRule{
		{name: "combine_similar_steps", apply: combineSimilarSteps},
		{name: "reorder_by_phase", apply: reorderByPhase},
		{name: "remove_redundant_steps", apply: removeRedundantSteps},
	}
	return o
}

// Optimize returns a rewritten copy of the definition. The input is never
// mutated. Repeated calls for the same workflow identity return the
// memoized result without re-running the rules.
func (o *Optimizer) Optimize(def *workflow.Definition) *workflow.Definition {
	if def == nil {
		return nil
	}

	identity := def.Identity()
	o.mu.RLock()
	cached, ok := o.memo[identity]
	o.mu.RUnlock()
	if ok {
		return cached
	}

	optimized := def.Clone()
	for _, rule := range o.rules {
		rewritten, err := rule.apply(optimized.Steps)
		if err != nil {
			o.logger.Warn("optimizer rule failed, continuing with unmodified steps",
				"rule", rule.name,
				"workflow", identity,
				"error", err)
			continue
		}
		optimized.Steps = rewritten
	}

	o.mu.Lock()
	o.memo[identity] = optimized
	o.mu.Unlock()
	return optimized
}

// Invalidate drops the memoized result for the workflow identity. Callers
// must invalidate when a (name, version) pair is rebound to a different
// definition.
func (o *Optimizer) Invalidate(name, version string) {
	o.mu.Lock()
	delete(o.memo, name+"@"+version)
	o.mu.Unlock()
}

// combineSimilarSteps groups steps by type; any group with more than one
// member is replaced by a single synthesized step whose parameters are the
// shallow-merged union of the group's parameters, later members overwriting
// earlier on key collision. The synthesized step takes the group's position
// of first occurrence.
func combineSimilarSteps(steps []workflow.StepSpec) ([]workflow.StepSpec, error) {
	counts := make(map[workflow.StepType]int)
	for _, s := range steps {
		counts[s.Type]++
	}

	merged := make(map[workflow.StepType]workflow.StepSpec)
	out := make([]workflow.StepSpec, 0, len(steps))
	for _, s := range steps {
		if counts[s.Type] < 2 {
			out = append(out, s)
			continue
		}
		group, seen := merged[s.Type]
		if !seen {
			combined := workflow.StepSpec{
				Type:       s.Type,
				Name:       fmt.Sprintf("combined_%s", s.Type),
				Parameters: make(map[string]any, len(s.Parameters)+2),
			}
			for k, v := range s.Parameters {
				combined.Parameters[k] = v
			}
			combined.Parameters[ParamCombined] = true
			combined.Parameters[ParamOriginalSteps] = counts[s.Type]
			merged[s.Type] = combined
			out = append(out, combined)
			continue
		}
		for k, v := range s.Parameters {
			group.Parameters[k] = v
		}
	}
	return out, nil
}

// reorderByPhase stable-sorts steps by the fixed phase priority table.
// Unknown types sort last. Stability preserves the relative order of steps
// within the same phase.
func reorderByPhase(steps []workflow.StepSpec) ([]workflow.StepSpec, error) {
	out := make([]workflow.StepSpec, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool {
		return workflow.PhasePriority(out[i].Type) < workflow.PhasePriority(out[j].Type)
	})
	return out, nil
}

// removeRedundantSteps drops later occurrences of steps with an identical
// (type, name) key, keeping the first. Surviving order is preserved.
func removeRedundantSteps(steps []workflow.StepSpec) ([]workflow.StepSpec, error) {
	seen := make(map[string]bool, len(steps))
	out := make([]workflow.StepSpec, 0, len(steps))
	for _, s := range steps {
		key := s.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out, nil
}
