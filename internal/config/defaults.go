package config

import (
	"time"
)

// DefaultConfig returns a Config with sensible default values.
// The resource limits (512 MB, 80% CPU, 5 concurrent executions), the cache
// TTL of one hour with 1000 entries, and the SemiAuto fallback level are the
// documented system defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			StepTimeout:          5 * time.Minute,
			MaxTrackedExecutions: 1000,
		},
		Resources: ResourcesConfig{
			MaxMemoryMB:       512,
			MaxCPUPercent:     80,
			MaxConcurrent:     5,
			DefaultMemoryMB:   64,
			DefaultCPUPercent: 10,
		},
		Cache: CacheConfig{
			TTL:        time.Hour,
			MaxEntries: 1000,
		},
		Queue: QueueConfig{
			MaxSize: 100,
		},
		Scheduler: SchedulerConfig{
			PerStepEstimate: 30 * time.Second,
		},
		Automation: AutomationConfig{
			DefaultLevel: "semi_auto",
		},
		Confidence: ConfidenceConfig{
			ComplexityWeight: 0.30,
			HistoryWeight:    0.25,
			QualityWeight:    0.20,
			ExperienceWeight: 0.15,
			HealthWeight:     0.10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Provider: "prometheus",
			Port:     9090,
		},
	}
}
