package automation

import (
	"strings"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// Level represents the degree of autonomy granted to automated execution of
// a task, from fully manual to fully automatic or context-adaptive.
type Level string

const (
	// LevelManual requires a human to drive every action.
	LevelManual Level = "manual"

	// LevelAssisted automates with human guidance at each decision point.
	LevelAssisted Level = "assisted"

	// LevelSemiAuto automates execution but requires confirmation before
	// results are committed.
	LevelSemiAuto Level = "semi_auto"

	// LevelFullAuto executes without human involvement.
	LevelFullAuto Level = "full_auto"

	// LevelAdaptive resolves autonomy dynamically from the task's
	// confidence score.
	LevelAdaptive Level = "adaptive"
)

// String returns the string representation of the level.
func (l Level) String() string {
	return string(l)
}

// IsValid checks if the level is one of the defined constants.
func (l Level) IsValid() bool {
	switch l {
	case LevelManual, LevelAssisted, LevelSemiAuto, LevelFullAuto, LevelAdaptive:
		return true
	default:
		return false
	}
}

// ParseLevel converts a string (as found in configuration or preference
// stores) into a Level. Unknown names yield an AUTOMATION_LEVEL_UNKNOWN
// contract error.
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(s)))
	if !level.IsValid() {
		return "", types.NewError(types.AUTOMATION_LEVEL_UNKNOWN, "unknown automation level: "+s)
	}
	return level, nil
}
