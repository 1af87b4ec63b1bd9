package observability

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/autopilot-sh/autopilot/internal/config"
)

// Metric name constants for automation core observability.
// These constants provide a centralized definition of all metric names
// to ensure consistency across the codebase and prevent typos.
const (
	// Execution metrics
	MetricExecutions        = "autopilot.executions"
	MetricExecutionDuration = "autopilot.execution.duration"
	MetricExecutionSteps    = "autopilot.execution.steps"

	// Cache metrics
	MetricCacheHits   = "autopilot.cache.hits"
	MetricCacheMisses = "autopilot.cache.misses"

	// Resource metrics
	MetricResourceRejections = "autopilot.resource.rejections"

	// Step metrics
	MetricStepDuration = "autopilot.step.duration"
)

// InitMetrics initializes and returns a metrics provider based on the
// configuration. Supports "prometheus" (pull, scraped by a Prometheus server)
// and "otlp" (push via gRPC to a collector) provider types. A disabled config
// yields a noop provider so callers never need nil checks.
func InitMetrics(ctx context.Context, cfg config.MetricsConfig) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		return noop.NewMeterProvider(), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}

	switch strings.ToLower(cfg.Provider) {
	case "prometheus":
		return initPrometheusProvider()

	case "otlp":
		return initOTLPProvider(ctx, cfg)

	default:
		return nil, fmt.Errorf("unsupported metrics provider: %s", cfg.Provider)
	}
}

// initPrometheusProvider creates and initializes a Prometheus metrics provider.
func initPrometheusProvider() (metric.MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	), nil
}

// initOTLPProvider creates and initializes an OTLP metrics provider that
// pushes metrics to a collector endpoint via gRPC.
func initOTLPProvider(ctx context.Context, cfg config.MetricsConfig) (metric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(fmt.Sprintf("localhost:%d", cfg.Port)),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter)

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
	), nil
}

// MetricsRecorder provides thread-safe recording of counters and histograms.
//
// Instruments are lazily created on first use and cached for subsequent
// recordings. Reader lock for instrument lookups, writer lock for creation.
type MetricsRecorder struct {
	meter      metric.Meter
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
	mu         sync.RWMutex
}

// NewMetricsRecorder creates a new OpenTelemetry-backed metrics recorder.
func NewMetricsRecorder(meter metric.Meter) *MetricsRecorder {
	return &MetricsRecorder{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// RecordCounter increments a counter metric by the given value.
func (r *MetricsRecorder) RecordCounter(name string, value int64, labels map[string]string) {
	counter := r.getOrCreateCounter(name)
	if counter == nil {
		return
	}

	counter.Add(context.Background(), value, metric.WithAttributes(labelsToAttributes(labels)...))
}

// RecordHistogram records a value in a histogram metric.
func (r *MetricsRecorder) RecordHistogram(name string, value float64, labels map[string]string) {
	histogram := r.getOrCreateHistogram(name)
	if histogram == nil {
		return
	}

	histogram.Record(context.Background(), value, metric.WithAttributes(labelsToAttributes(labels)...))
}

// RecordExecution records the metrics for one workflow execution outcome.
// This is a convenience method that records the related metrics together.
func (r *MetricsRecorder) RecordExecution(workflow, status string, steps int, durationMs float64) {
	labels := map[string]string{
		"workflow": workflow,
		"status":   status,
	}

	r.RecordCounter(MetricExecutions, 1, labels)
	r.RecordCounter(MetricExecutionSteps, int64(steps), labels)
	r.RecordHistogram(MetricExecutionDuration, durationMs, labels)
}

// RecordCacheLookup records a cache hit or miss for a workflow.
func (r *MetricsRecorder) RecordCacheLookup(workflow string, hit bool) {
	labels := map[string]string{"workflow": workflow}
	if hit {
		r.RecordCounter(MetricCacheHits, 1, labels)
		return
	}
	r.RecordCounter(MetricCacheMisses, 1, labels)
}

// RecordResourceRejection records an allocation rejected for exceeding limits.
func (r *MetricsRecorder) RecordResourceRejection(reason string) {
	r.RecordCounter(MetricResourceRejections, 1, map[string]string{"reason": reason})
}

// getOrCreateCounter retrieves or creates a counter instrument.
func (r *MetricsRecorder) getOrCreateCounter(name string) metric.Int64Counter {
	r.mu.RLock()
	counter, exists := r.counters[name]
	r.mu.RUnlock()

	if exists {
		return counter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check in case another goroutine created it
	if counter, exists := r.counters[name]; exists {
		return counter
	}

	counter, err := r.meter.Int64Counter(name)
	if err != nil {
		return nil
	}

	r.counters[name] = counter
	return counter
}

// getOrCreateHistogram retrieves or creates a histogram instrument.
func (r *MetricsRecorder) getOrCreateHistogram(name string) metric.Float64Histogram {
	r.mu.RLock()
	histogram, exists := r.histograms[name]
	r.mu.RUnlock()

	if exists {
		return histogram
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if histogram, exists := r.histograms[name]; exists {
		return histogram
	}

	histogram, err := r.meter.Float64Histogram(name)
	if err != nil {
		return nil
	}

	r.histograms[name] = histogram
	return histogram
}

// labelsToAttributes converts a string map to OpenTelemetry attributes.
func labelsToAttributes(labels map[string]string) []attribute.KeyValue {
	if labels == nil {
		return []attribute.KeyValue{}
	}

	attrs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
