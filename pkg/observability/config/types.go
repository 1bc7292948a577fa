package config

import (
	"fmt"
	"time"
)

const (
	// DefaultMetricsInterval is the default metrics collection interval.
	DefaultMetricsInterval = 10 * time.Second

	// DefaultSampleRatio samples every root span.
	DefaultSampleRatio = 1.0

	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultRuntimeStatsInterval is the default interval for runtime stats.
	DefaultRuntimeStatsInterval = time.Second

	// TracingComponentName is the name used for health check registration.
	TracingComponentName = "tracing"

	// MetricsComponentName is the name used for health check registration.
	MetricsComponentName = "metrics"
)

// Config holds all observability configuration.
//
// yaml example:
//
//	observability:
//	  otel-collector-endpoint: otel-collector:4317
//	  tracing:
//	    enabled: true
//	    sample-ratio: 0.25
//	  metrics:
//	    enabled: true
//	    interval: 15s
type Config struct {
	OtelCollectorEndpoint string        `mapstructure:"otel-collector-endpoint"`
	Tracing               TracingConfig `mapstructure:"tracing"`
	Metrics               MetricsConfig `mapstructure:"metrics"`
}

// TracingConfig holds tracing-specific configuration.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// SampleRatio is the share of root spans recorded. Child spans follow their parent.
	SampleRatio float64 `mapstructure:"sample-ratio"`
}

// MetricsConfig holds metrics-specific configuration.
type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample-ratio must be between 0 and 1, got %v", c.Tracing.SampleRatio)
	}
	if c.Metrics.Enabled && c.OtelCollectorEndpoint == "" {
		return fmt.Errorf("otel-collector-endpoint is required when metrics are enabled")
	}
	if c.Metrics.Interval < 0 {
		return fmt.Errorf("metrics.interval must not be negative")
	}
	return nil
}
