package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, NewConfigValidator().Validate(cfg))

	assert.Equal(t, 512, cfg.Resources.MaxMemoryMB)
	assert.Equal(t, float64(80), cfg.Resources.MaxCPUPercent)
	assert.Equal(t, 5, cfg.Resources.MaxConcurrent)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.PerStepEstimate)
	assert.Equal(t, "semi_auto", cfg.Automation.DefaultLevel)
}

func TestValidator_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero step timeout", mutate: func(c *Config) { c.Engine.StepTimeout = 0 }},
		{name: "negative memory limit", mutate: func(c *Config) { c.Resources.MaxMemoryMB = -1 }},
		{name: "cpu limit over 100", mutate: func(c *Config) { c.Resources.MaxCPUPercent = 101 }},
		{name: "zero concurrency", mutate: func(c *Config) { c.Resources.MaxConcurrent = 0 }},
		{name: "default memory above limit", mutate: func(c *Config) { c.Resources.DefaultMemoryMB = 1024 }},
		{name: "zero cache ttl", mutate: func(c *Config) { c.Cache.TTL = 0 }},
		{name: "zero queue size", mutate: func(c *Config) { c.Queue.MaxSize = 0 }},
		{name: "weights do not sum to one", mutate: func(c *Config) { c.Confidence.HealthWeight = 0.5 }},
		{name: "negative weight", mutate: func(c *Config) {
			c.Confidence.ComplexityWeight = -0.1
			c.Confidence.HistoryWeight = 0.65
		}},
		{name: "bad metrics provider", mutate: func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Provider = "statsd"
		}},
	}

	validator := NewConfigValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, validator.Validate(cfg))
		})
	}
}

func TestLoader_LoadWithDefaults_MissingFile(t *testing.T) {
	loader := NewConfigLoader(NewConfigValidator())

	cfg, err := loader.LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_Load_PartialFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "autopilot.yaml")
	content := []byte(`
resources:
  max_memory_mb: 256
cache:
  max_entries: 50
automation:
  default_level: full_auto
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := NewConfigLoader(NewConfigValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Resources.MaxMemoryMB)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)
	assert.Equal(t, "full_auto", cfg.Automation.DefaultLevel)

	// Untouched values keep their defaults.
	assert.Equal(t, 5, cfg.Resources.MaxConcurrent)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestLoader_Load_EnvInterpolation(t *testing.T) {
	t.Setenv("AUTOPILOT_LEVEL", "manual")

	dir := t.TempDir()
	path := filepath.Join(dir, "autopilot.yaml")
	content := []byte(`
automation:
  default_level: ${AUTOPILOT_LEVEL}
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := NewConfigLoader(NewConfigValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "manual", cfg.Automation.DefaultLevel)
}

func TestLoader_Load_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "autopilot.yaml")
	content := []byte(`
resources:
  max_concurrent: 0
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := NewConfigLoader(NewConfigValidator()).Load(path)
	assert.Error(t, err)
}
