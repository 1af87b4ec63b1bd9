// Package resource enforces bounded memory, CPU-share, and concurrency
// budgets across executions.
package resource

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/autopilot-sh/autopilot/internal/config"
	"github.com/autopilot-sh/autopilot/internal/types"
)

// Requirements describes what one execution asks to reserve. Zero values
// fall back to the configured per-execution defaults.
type Requirements struct {
	MemoryMB   int           `json:"memory_mb"`
	CPUPercent float64       `json:"cpu_percent"`
	Timeout    time.Duration `json:"timeout"`
}

// Allocation is a live reservation held for the duration of one execution.
type Allocation struct {
	ExecutionID types.ID      `json:"execution_id"`
	MemoryMB    int           `json:"memory_mb"`
	CPUPercent  float64       `json:"cpu_percent"`
	Timeout     time.Duration `json:"timeout"`
	AllocatedAt time.Time     `json:"allocated_at"`
}

// Utilization reports current usage as a percentage of each limit.
type Utilization struct {
	MemoryPercent      float64 `json:"memory_percent"`
	CPUPercent         float64 `json:"cpu_percent"`
	ConcurrencyPercent float64 `json:"concurrency_percent"`
	ActiveExecutions   int     `json:"active_executions"`
}

// Manager tracks active allocations against configured limits. The
// allocation map is the only state shared across concurrent engine
// instances; a single mutex covers both the capacity check and the
// allocation write so two concurrent requests cannot both pass the check
// before either commits.
type Manager struct {
	limits config.ResourcesConfig
	logger *slog.Logger

	mu     sync.Mutex
	active map[types.ID]Allocation
}

// NewManager creates a resource manager enforcing the given limits.
// A nil logger defaults to slog.Default().
func NewManager(limits config.ResourcesConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		limits: limits,
		logger: logger,
		active: make(map[types.ID]Allocation),
	}
}

// Allocate reserves capacity for the execution. It fails with a retryable
// RESOURCE_EXHAUSTED error when projected memory, projected CPU, or the
// concurrent-execution count would exceed the configured limits.
func (m *Manager) Allocate(executionID types.ID, req Requirements) (Allocation, error) {
	memory := req.MemoryMB
	if memory <= 0 {
		memory = m.limits.DefaultMemoryMB
	}
	cpu := req.CPUPercent
	if cpu <= 0 {
		cpu = m.limits.DefaultCPUPercent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.active) >= m.limits.MaxConcurrent {
		return Allocation{}, types.NewRetryableError(types.RESOURCE_EXHAUSTED,
			fmt.Sprintf("concurrent execution limit reached (%d)", m.limits.MaxConcurrent))
	}

	usedMemory, usedCPU := m.usageLocked()
	if usedMemory+memory > m.limits.MaxMemoryMB {
		return Allocation{}, types.NewRetryableError(types.RESOURCE_EXHAUSTED,
			fmt.Sprintf("memory limit exceeded: %d+%d > %d MB", usedMemory, memory, m.limits.MaxMemoryMB))
	}
	if usedCPU+cpu > m.limits.MaxCPUPercent {
		return Allocation{}, types.NewRetryableError(types.RESOURCE_EXHAUSTED,
			fmt.Sprintf("cpu limit exceeded: %.1f+%.1f > %.1f%%", usedCPU, cpu, m.limits.MaxCPUPercent))
	}

	alloc := Allocation{
		ExecutionID: executionID,
		MemoryMB:    memory,
		CPUPercent:  cpu,
		Timeout:     req.Timeout,
		AllocatedAt: time.Now(),
	}
	m.active[executionID] = alloc

	m.logger.Debug("resources allocated",
		"execution_id", executionID.Short(),
		"memory_mb", memory,
		"cpu_percent", cpu,
		"active", len(m.active))
	return alloc, nil
}

// Release frees the allocation for the execution. It is idempotent:
// releasing an unknown id returns false, not an error.
func (m *Manager) Release(executionID types.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.active[executionID]; !ok {
		return false
	}
	delete(m.active, executionID)
	m.logger.Debug("resources released",
		"execution_id", executionID.Short(),
		"active", len(m.active))
	return true
}

// Utilization returns current usage as a percentage of each limit, computed
// from a consistent snapshot.
func (m *Manager) Utilization() Utilization {
	m.mu.Lock()
	defer m.mu.Unlock()

	usedMemory, usedCPU := m.usageLocked()
	u := Utilization{ActiveExecutions: len(m.active)}
	if m.limits.MaxMemoryMB > 0 {
		u.MemoryPercent = float64(usedMemory) / float64(m.limits.MaxMemoryMB) * 100
	}
	if m.limits.MaxCPUPercent > 0 {
		u.CPUPercent = usedCPU / m.limits.MaxCPUPercent * 100
	}
	if m.limits.MaxConcurrent > 0 {
		u.ConcurrencyPercent = float64(len(m.active)) / float64(m.limits.MaxConcurrent) * 100
	}
	return u
}

// ActiveCount returns the number of live allocations.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *Manager) usageLocked() (memoryMB int, cpuPercent float64) {
	for _, alloc := range m.active {
		memoryMB += alloc.MemoryMB
		cpuPercent += alloc.CPUPercent
	}
	return memoryMB, cpuPercent
}
