package automation

import (
	"context"
	"sync"
)

// PreferenceStore persists per-user and per-project automation preferences.
// Absence is a normal case: lookups return ok=false, never an error, when no
// preference exists. Setters must acknowledge persistence; a persist failure
// is surfaced to the caller, not swallowed.
type PreferenceStore interface {
	GetUserPreference(ctx context.Context, userID string) (Level, bool, error)
	GetProjectSetting(ctx context.Context, projectID string) (Level, bool, error)
	SetUserPreference(ctx context.Context, userID string, level Level) error
	SetProjectSetting(ctx context.Context, projectID string, level Level) error
}

// MemoryPreferenceStore is a mutex-guarded in-memory PreferenceStore, used
// as the default store and in tests.
type MemoryPreferenceStore struct {
	mu       sync.RWMutex
	users    map[string]Level
	projects map[string]Level
}

// NewMemoryPreferenceStore creates an empty in-memory store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{
		users:    make(map[string]Level),
		projects: make(map[string]Level),
	}
}

// GetUserPreference returns the stored preference for the user, if any.
func (s *MemoryPreferenceStore) GetUserPreference(_ context.Context, userID string) (Level, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.users[userID]
	return level, ok, nil
}

// GetProjectSetting returns the stored setting for the project, if any.
func (s *MemoryPreferenceStore) GetProjectSetting(_ context.Context, projectID string) (Level, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.projects[projectID]
	return level, ok, nil
}

// SetUserPreference stores the preference for the user.
func (s *MemoryPreferenceStore) SetUserPreference(_ context.Context, userID string, level Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = level
	return nil
}

// SetProjectSetting stores the setting for the project.
func (s *MemoryPreferenceStore) SetProjectSetting(_ context.Context, projectID string, level Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[projectID] = level
	return nil
}
