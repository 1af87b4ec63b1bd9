package automation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/autopilot-sh/autopilot/internal/task"
	"github.com/autopilot-sh/autopilot/internal/types"
)

// taskTypeDefaults is the static per-task-type level table, consulted after
// explicit preferences and before the confidence gate.
var taskTypeDefaults = map[task.Type]Level{
	task.TypeDeployment: LevelManual,
	task.TypeSecurity:   LevelManual,
	task.TypeAnalysis:   LevelFullAuto,
	task.TypeTesting:    LevelFullAuto,
	task.TypeRefactor:   LevelSemiAuto,
}

// Manager resolves the effective automation level for a task. Resolution
// precedence, first match wins:
//
//  1. Explicit per-user preference.
//  2. Explicit per-project setting.
//  3. Static task-type default table.
//  4. Confidence score at or above the FullAuto threshold.
//  5. Rule-engine evaluation, first matching rule wins.
//  6. Configured global default.
//
// Absence at any stage falls through to the next; no stage errors for a
// missing preference.
type Manager struct {
	calculator   ConfidenceScorer
	store        PreferenceStore
	rules        []Rule
	defaultLevel Level
	logger       *slog.Logger

	// prefMu guards the local preference caches, which shadow the store so
	// repeated lookups skip external round-trips.
	prefMu       sync.RWMutex
	userPrefs    map[string]Level
	projectPrefs map[string]Level
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRules installs the ordered rule list evaluated at precedence stage 5.
func WithRules(rules []Rule) ManagerOption {
	return func(m *Manager) { m.rules = rules }
}

// WithDefaultLevel overrides the global fallback level.
func WithDefaultLevel(level Level) ManagerOption {
	return func(m *Manager) { m.defaultLevel = level }
}

// NewManager creates a Manager. A nil store defaults to an in-memory store;
// a nil logger defaults to slog.Default().
func NewManager(calculator ConfidenceScorer, store PreferenceStore, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if store == nil {
		store = NewMemoryPreferenceStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		calculator:   calculator,
		store:        store,
		defaultLevel: LevelSemiAuto,
		logger:       logger,
		userPrefs:    make(map[string]Level),
		projectPrefs: make(map[string]Level),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DetermineLevel resolves the automation level for the task using the
// precedence chain. It never fails: every unresolvable stage falls through,
// and the configured default terminates the chain.
func (m *Manager) DetermineLevel(ctx context.Context, t *task.Task) Level {
	if t == nil {
		return m.defaultLevel
	}

	if level, ok := m.userPreference(ctx, t.UserID); ok {
		m.logger.Debug("automation level from user preference",
			"user_id", t.UserID, "level", level.String())
		return level
	}

	if level, ok := m.projectSetting(ctx, t.ProjectID); ok {
		m.logger.Debug("automation level from project setting",
			"project_id", t.ProjectID, "level", level.String())
		return level
	}

	if level, ok := taskTypeDefaults[t.Type]; ok {
		m.logger.Debug("automation level from task type default",
			"task_type", t.Type.String(), "level", level.String())
		return level
	}

	if m.calculator != nil {
		score := m.calculator.Calculate(ctx, t)
		if score >= Threshold(LevelFullAuto) {
			m.logger.Debug("automation level from confidence score",
				"score", score, "level", LevelFullAuto.String())
			return LevelFullAuto
		}
	}

	if level, ok := EvaluateRules(m.rules, t); ok {
		m.logger.Debug("automation level from rule engine", "level", level.String())
		return level
	}

	return m.defaultLevel
}

// SetUserPreference records the preference in the local cache and persists
// it to the store. Persistence failures are surfaced to the caller; the
// local cache is only updated after a successful persist.
func (m *Manager) SetUserPreference(ctx context.Context, userID string, level Level) error {
	if !level.IsValid() {
		return types.NewError(types.AUTOMATION_LEVEL_UNKNOWN, "unknown automation level: "+level.String())
	}
	if err := m.store.SetUserPreference(ctx, userID, level); err != nil {
		return types.WrapError(types.PREFERENCE_PERSIST_FAILED, "failed to persist user preference", err)
	}
	m.prefMu.Lock()
	m.userPrefs[userID] = level
	m.prefMu.Unlock()
	return nil
}

// SetProjectSetting records the setting in the local cache and persists it
// to the store. Persistence failures are surfaced to the caller.
func (m *Manager) SetProjectSetting(ctx context.Context, projectID string, level Level) error {
	if !level.IsValid() {
		return types.NewError(types.AUTOMATION_LEVEL_UNKNOWN, "unknown automation level: "+level.String())
	}
	if err := m.store.SetProjectSetting(ctx, projectID, level); err != nil {
		return types.WrapError(types.PREFERENCE_PERSIST_FAILED, "failed to persist project setting", err)
	}
	m.prefMu.Lock()
	m.projectPrefs[projectID] = level
	m.prefMu.Unlock()
	return nil
}

func (m *Manager) userPreference(ctx context.Context, userID string) (Level, bool) {
	if userID == "" {
		return "", false
	}
	m.prefMu.RLock()
	level, ok := m.userPrefs[userID]
	m.prefMu.RUnlock()
	if ok {
		return level, true
	}

	level, ok, err := m.store.GetUserPreference(ctx, userID)
	if err != nil {
		m.logger.Warn("user preference lookup failed, falling through",
			"user_id", userID, "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	m.prefMu.Lock()
	m.userPrefs[userID] = level
	m.prefMu.Unlock()
	return level, true
}

func (m *Manager) projectSetting(ctx context.Context, projectID string) (Level, bool) {
	if projectID == "" {
		return "", false
	}
	m.prefMu.RLock()
	level, ok := m.projectPrefs[projectID]
	m.prefMu.RUnlock()
	if ok {
		return level, true
	}

	level, ok, err := m.store.GetProjectSetting(ctx, projectID)
	if err != nil {
		m.logger.Warn("project setting lookup failed, falling through",
			"project_id", projectID, "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	m.prefMu.Lock()
	m.projectPrefs[projectID] = level
	m.prefMu.Unlock()
	return level, true
}
