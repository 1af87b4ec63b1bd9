package config

import (
	"time"
)

// Config is the root configuration for the automation core.
type Config struct {
	Engine     EngineConfig     `mapstructure:"engine" yaml:"engine"`
	Resources  ResourcesConfig  `mapstructure:"resources" yaml:"resources"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Queue      QueueConfig      `mapstructure:"queue" yaml:"queue"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" yaml:"scheduler"`
	Automation AutomationConfig `mapstructure:"automation" yaml:"automation"`
	Confidence ConfidenceConfig `mapstructure:"confidence" yaml:"confidence"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Tracing    TracingConfig    `mapstructure:"tracing" yaml:"tracing"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

// EngineConfig contains settings for the sequential execution engine.
type EngineConfig struct {
	// StepTimeout is the hard deadline applied to each step's execution.
	// It is deliberately independent from the scheduler's estimated duration,
	// which is an advisory hint only.
	StepTimeout time.Duration `mapstructure:"step_timeout" yaml:"step_timeout"`

	// MaxTrackedExecutions bounds the number of recent execution statuses
	// retained for inspection via status lookups.
	MaxTrackedExecutions int `mapstructure:"max_tracked_executions" yaml:"max_tracked_executions"`
}

// ResourcesConfig contains the resource limits enforced per engine process.
type ResourcesConfig struct {
	MaxMemoryMB   int     `mapstructure:"max_memory_mb" yaml:"max_memory_mb"`
	MaxCPUPercent float64 `mapstructure:"max_cpu_percent" yaml:"max_cpu_percent"`
	MaxConcurrent int     `mapstructure:"max_concurrent" yaml:"max_concurrent"`

	// DefaultMemoryMB and DefaultCPUPercent are reserved for an execution
	// when the caller does not specify explicit requirements.
	DefaultMemoryMB   int     `mapstructure:"default_memory_mb" yaml:"default_memory_mb"`
	DefaultCPUPercent float64 `mapstructure:"default_cpu_percent" yaml:"default_cpu_percent"`
}

// CacheConfig contains execution result cache settings.
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl" yaml:"ttl"`
	MaxEntries int           `mapstructure:"max_entries" yaml:"max_entries"`
}

// QueueConfig contains execution queue settings.
type QueueConfig struct {
	MaxSize int `mapstructure:"max_size" yaml:"max_size"`
}

// SchedulerConfig contains scheduling heuristics.
type SchedulerConfig struct {
	// PerStepEstimate is the coarse per-step duration used to estimate a
	// workflow's total runtime. Advisory metadata only.
	PerStepEstimate time.Duration `mapstructure:"per_step_estimate" yaml:"per_step_estimate"`
}

// AutomationConfig contains automation level resolution settings.
type AutomationConfig struct {
	// DefaultLevel is the global fallback automation level when no
	// preference, task-type default, confidence gate, or rule applies.
	DefaultLevel string `mapstructure:"default_level" yaml:"default_level"`
}

// ConfidenceConfig contains the factor weights for confidence scoring.
// Weights are configuration constants, not request-mutable, so the scoring
// function stays deterministic and testable.
type ConfidenceConfig struct {
	ComplexityWeight float64 `mapstructure:"complexity_weight" yaml:"complexity_weight"`
	HistoryWeight    float64 `mapstructure:"history_weight" yaml:"history_weight"`
	QualityWeight    float64 `mapstructure:"quality_weight" yaml:"quality_weight"`
	ExperienceWeight float64 `mapstructure:"experience_weight" yaml:"experience_weight"`
	HealthWeight     float64 `mapstructure:"health_weight" yaml:"health_weight"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// MetricsConfig contains metrics export configuration.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	Port     int    `mapstructure:"port" yaml:"port"`
}

// Validate checks the metrics configuration for consistency.
func (c MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Provider != "prometheus" && c.Provider != "otlp" {
		return errUnsupportedProvider(c.Provider)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errInvalidPort(c.Port)
	}
	return nil
}
