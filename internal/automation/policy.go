package automation

import (
	"github.com/autopilot-sh/autopilot/internal/types"
)

// Policy maps an automation level to its behavioral traits. Policies are
// fixed at startup and never mutated; PolicyFor is a pure lookup.
type Policy struct {
	Level Level `json:"level"`

	// ConfidenceThreshold is the minimum confidence score at which this
	// level considers automated execution trustworthy.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// RequiresConfirmation indicates a human must confirm before step
	// results are committed.
	RequiresConfirmation bool `json:"requires_confirmation"`

	// RequiresHumanReview indicates the final result must be reviewed by
	// a human before it is acted on.
	RequiresHumanReview bool `json:"requires_human_review"`
}

// policies is the closed decision table for all automation levels.
var policies = map[Level]Policy{
	LevelManual: {
		Level:                LevelManual,
		ConfidenceThreshold:  0.0,
		RequiresConfirmation: true,
		RequiresHumanReview:  true,
	},
	LevelAssisted: {
		Level:                LevelAssisted,
		ConfidenceThreshold:  0.6,
		RequiresConfirmation: true,
		RequiresHumanReview:  true,
	},
	LevelSemiAuto: {
		Level:                LevelSemiAuto,
		ConfidenceThreshold:  0.7,
		RequiresConfirmation: true,
		RequiresHumanReview:  false,
	},
	LevelFullAuto: {
		Level:                LevelFullAuto,
		ConfidenceThreshold:  0.8,
		RequiresConfirmation: false,
		RequiresHumanReview:  false,
	},
	LevelAdaptive: {
		Level:                LevelAdaptive,
		ConfidenceThreshold:  0.75,
		RequiresConfirmation: true,
		RequiresHumanReview:  false,
	},
}

// PolicyFor returns the policy for the given level.
// Unknown levels yield an AUTOMATION_LEVEL_UNKNOWN contract error.
func PolicyFor(level Level) (Policy, error) {
	policy, ok := policies[level]
	if !ok {
		return Policy{}, types.NewError(types.AUTOMATION_LEVEL_UNKNOWN, "unknown automation level: "+level.String())
	}
	return policy, nil
}

// Threshold returns the confidence threshold for the given level, or 0 for
// unknown levels.
func Threshold(level Level) float64 {
	return policies[level].ConfidenceThreshold
}
