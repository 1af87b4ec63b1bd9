package config

import (
	"fmt"
	"math"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// ConfigValidator validates a loaded configuration.
type ConfigValidator interface {
	Validate(cfg *Config) error
}

// defaultValidator implements ConfigValidator with the core's invariants.
type defaultValidator struct{}

// NewConfigValidator creates a new ConfigValidator instance.
func NewConfigValidator() ConfigValidator {
	return &defaultValidator{}
}

// Validate checks the configuration for internal consistency.
// All violations are reported as non-retryable CONFIG_VALIDATION_FAILED errors.
func (v *defaultValidator) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "config is nil")
	}

	if cfg.Engine.StepTimeout <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "engine.step_timeout must be positive")
	}
	if cfg.Engine.MaxTrackedExecutions <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "engine.max_tracked_executions must be positive")
	}

	if cfg.Resources.MaxMemoryMB <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "resources.max_memory_mb must be positive")
	}
	if cfg.Resources.MaxCPUPercent <= 0 || cfg.Resources.MaxCPUPercent > 100 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "resources.max_cpu_percent must be in (0, 100]")
	}
	if cfg.Resources.MaxConcurrent <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "resources.max_concurrent must be positive")
	}
	if cfg.Resources.DefaultMemoryMB <= 0 || cfg.Resources.DefaultMemoryMB > cfg.Resources.MaxMemoryMB {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "resources.default_memory_mb must be positive and within max_memory_mb")
	}
	if cfg.Resources.DefaultCPUPercent <= 0 || cfg.Resources.DefaultCPUPercent > cfg.Resources.MaxCPUPercent {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "resources.default_cpu_percent must be positive and within max_cpu_percent")
	}

	if cfg.Cache.TTL <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "cache.ttl must be positive")
	}
	if cfg.Cache.MaxEntries <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "cache.max_entries must be positive")
	}

	if cfg.Queue.MaxSize <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "queue.max_size must be positive")
	}

	if cfg.Scheduler.PerStepEstimate <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "scheduler.per_step_estimate must be positive")
	}

	if err := validateWeights(cfg.Confidence); err != nil {
		return err
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return types.WrapError(types.CONFIG_VALIDATION_FAILED, "invalid metrics config", err)
	}

	return nil
}

// validateWeights checks that the confidence weights are individually
// non-negative and sum to 1.0 within a small tolerance.
func validateWeights(c ConfidenceConfig) error {
	weights := []float64{
		c.ComplexityWeight,
		c.HistoryWeight,
		c.QualityWeight,
		c.ExperienceWeight,
		c.HealthWeight,
	}

	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return types.NewError(types.CONFIG_VALIDATION_FAILED, "confidence weights must be non-negative")
		}
		sum += w
	}

	if math.Abs(sum-1.0) > 1e-9 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("confidence weights must sum to 1.0, got %.4f", sum))
	}

	return nil
}

func errUnsupportedProvider(provider string) error {
	return fmt.Errorf("unsupported metrics provider: %s", provider)
}

func errInvalidPort(port int) error {
	return fmt.Errorf("invalid metrics port: %d", port)
}
