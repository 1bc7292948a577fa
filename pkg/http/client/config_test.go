package client

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:     lo.ToPtr(DefaultMaxAttempts),
		InitialInterval: lo.ToPtr(DefaultInitialInterval),
		MaxInterval:     lo.ToPtr(DefaultMaxInterval),
	}
}

func TestClientConfig_applyDefaults(t *testing.T) {
	tests := []struct {
		name     string
		initial  ClientConfig
		expected ClientConfig
	}{
		{
			name:    "all nil values get defaults",
			initial: ClientConfig{BaseURL: "http://example.com"},
			expected: ClientConfig{
				BaseURL:             "http://example.com",
				Timeout:             lo.ToPtr(DefaultTimeout),
				MaxIdleConnsPerHost: lo.ToPtr(DefaultMaxIdleConnsPerHost),
				IdleConnTimeout:     lo.ToPtr(DefaultIdleConnTimeout),
				MaxConnLifetime:     lo.ToPtr(DefaultMaxConnLifetime),
				Retry:               defaultRetry(),
			},
		},
		{
			name: "custom values preserved",
			initial: ClientConfig{
				BaseURL:         "http://example.com",
				Timeout:         lo.ToPtr(30 * time.Second),
				MaxConnLifetime: lo.ToPtr(time.Duration(0)),
				Retry:           RetryConfig{MaxAttempts: lo.ToPtr(1)},
			},
			expected: ClientConfig{
				BaseURL:             "http://example.com",
				Timeout:             lo.ToPtr(30 * time.Second),
				MaxIdleConnsPerHost: lo.ToPtr(DefaultMaxIdleConnsPerHost),
				IdleConnTimeout:     lo.ToPtr(DefaultIdleConnTimeout),
				MaxConnLifetime:     lo.ToPtr(time.Duration(0)),
				Retry: RetryConfig{
					MaxAttempts:     lo.ToPtr(1),
					InitialInterval: lo.ToPtr(DefaultInitialInterval),
					MaxInterval:     lo.ToPtr(DefaultMaxInterval),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			cfg.applyDefaults()
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestClientConfig_validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ClientConfig
		wantErr string
	}{
		{name: "valid", cfg: ClientConfig{BaseURL: "http://catalog:8080"}},
		{name: "missing base url", cfg: ClientConfig{}, wantErr: "base-url is required"},
		{name: "relative base url", cfg: ClientConfig{BaseURL: "/catalog"}, wantErr: "must be an absolute URL"},
		{
			name:    "zero attempts",
			cfg:     ClientConfig{BaseURL: "http://catalog:8080", Retry: RetryConfig{MaxAttempts: lo.ToPtr(0)}},
			wantErr: "retry.max-attempts must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProvide(t *testing.T) {
	t.Run("loads named client", func(t *testing.T) {
		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(`
clients:
  catalog-service:
    base-url: http://catalog-service:8080
    timeout: 3s
    retry:
      max-attempts: 5
`)))

		c, err := Provide("catalog-service")(v)

		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, c.HTTPClient().Timeout)
		assert.Equal(t, 5, *c.retry.MaxAttempts)
		assert.Equal(t, "http://catalog-service:8080", c.baseURL.String())
	})

	t.Run("missing client section", func(t *testing.T) {
		_, err := Provide("unknown")(viper.New())

		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid client config "unknown"`)
	})
}
