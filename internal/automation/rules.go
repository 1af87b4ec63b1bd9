package automation

import (
	"github.com/autopilot-sh/autopilot/internal/task"
)

// Rule maps a task predicate to an automation level. Rules are evaluated in
// order after the confidence gate; the first rule whose predicate matches
// wins. Deliberately minimal: predicates are plain Go functions, not a DSL.
type Rule struct {
	// Name identifies the rule in logs.
	Name string

	// Description explains what the rule matches.
	Description string

	// Applies reports whether the rule matches the task.
	Applies func(t *task.Task) bool

	// Level is returned when the rule matches.
	Level Level
}

// EvaluateRules returns the level of the first matching rule and true, or
// the zero Level and false when no rule matches. Rules with a nil predicate
// are skipped.
func EvaluateRules(rules []Rule, t *task.Task) (Level, bool) {
	for _, rule := range rules {
		if rule.Applies == nil {
			continue
		}
		if rule.Applies(t) {
			return rule.Level, true
		}
	}
	return "", false
}
