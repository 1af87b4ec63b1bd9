package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID identifies executions, tasks, and the other values the automation core
// hands between components. The zero value means "no id" and marshals as
// JSON null.
type ID string

// shortIDLen is how many leading characters Short keeps for log lines.
const shortIDLen = 8

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID validates s as a UUID and returns it in canonical form.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("id is empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse id %q: %w", s, err)
	}
	return ID(u.String()), nil
}

// Validate reports whether the ID holds a well-formed, non-empty UUID.
func (id ID) Validate() error {
	_, err := ParseID(string(id))
	return err
}

// String returns the full canonical form.
func (id ID) String() string {
	return string(id)
}

// Short returns a truncated form for log lines where the full UUID is noise.
// Zero ids come back unchanged.
func (id ID) Short() string {
	if len(id) <= shortIDLen {
		return string(id)
	}
	return string(id[:shortIDLen])
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id == ""
}

// MarshalJSON encodes the ID as a JSON string, or null when unset.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON decodes a JSON string into the ID. null and "" both produce
// the zero ID; anything else must be a valid UUID.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal id: %w", err)
	}
	if s == "" {
		*id = ""
		return nil
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
