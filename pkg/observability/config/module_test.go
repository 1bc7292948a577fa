package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProvideConfig(t *testing.T) {
	tests := []struct {
		name    string
		opts    configOptions
		want    Config
		wantErr string
	}{
		{
			name: "defaults applied to static config",
			opts: configOptions{config: &Config{}},
			want: Config{
				Tracing: TracingConfig{SampleRatio: DefaultSampleRatio},
				Metrics: MetricsConfig{Interval: DefaultMetricsInterval},
			},
		},
		{
			name: "disable options win over config",
			opts: configOptions{
				config: &Config{
					OtelCollectorEndpoint: "collector:4317",
					Tracing:               TracingConfig{Enabled: true, SampleRatio: 0.5},
					Metrics:               MetricsConfig{Enabled: true, Interval: time.Minute},
				},
				disableTracing: true,
				disableMetrics: true,
			},
			want: Config{
				OtelCollectorEndpoint: "collector:4317",
				Tracing:               TracingConfig{SampleRatio: 0.5},
				Metrics:               MetricsConfig{Interval: time.Minute},
			},
		},
		{
			name:    "sample ratio above one",
			opts:    configOptions{config: &Config{Tracing: TracingConfig{SampleRatio: 1.5}}},
			wantErr: "tracing.sample-ratio must be between 0 and 1",
		},
		{
			name:    "metrics without endpoint",
			opts:    configOptions{config: &Config{Metrics: MetricsConfig{Enabled: true}}},
			wantErr: "otel-collector-endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := provideConfig(&tt.opts, viper.New(), zap.NewNop())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvideConfig_FromViper(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
observability:
  otel-collector-endpoint: otel-collector:4317
  tracing:
    enabled: true
    sample-ratio: 0.25
  metrics:
    enabled: true
    interval: 15s
`)))

	got, err := provideConfig(&configOptions{}, v, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, Config{
		OtelCollectorEndpoint: "otel-collector:4317",
		Tracing:               TracingConfig{Enabled: true, SampleRatio: 0.25},
		Metrics:               MetricsConfig{Enabled: true, Interval: 15 * time.Second},
	}, got)
}
