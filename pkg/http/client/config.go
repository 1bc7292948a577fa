package client

import (
	"fmt"
	"net/url"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Default values for HTTP client configuration
// Optimized for K8s: MaxConnLifetime ensures rebalancing, so pool can be larger for better performance
const (
	DefaultTimeout             = 10 * time.Second
	DefaultMaxIdleConnsPerHost = 100
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultMaxConnLifetime     = 60 * time.Second
	MaxRetriesCap              = 5

	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 100 * time.Millisecond
	DefaultMaxInterval     = 2 * time.Second
)

// ClientConfig holds configuration for an HTTP client loaded from config file
// yaml example:
//
//	clients:
//	  catalog-service:
//	    base-url: http://catalog-service:8080
//	    timeout: 10s
//	    max-idle-conns-per-host: 10
//	    idle-conn-timeout: 10s
//	    max-conn-lifetime: 60s
//	    retry:
//	      max-attempts: 3
//	      initial-interval: 100ms
//	      max-interval: 2s
//
// Omit timeout fields to use defaults. Set to 0 to disable.
type ClientConfig struct {
	BaseURL             string         `mapstructure:"base-url"`
	Timeout             *time.Duration `mapstructure:"timeout"`
	MaxIdleConnsPerHost *int           `mapstructure:"max-idle-conns-per-host"`
	IdleConnTimeout     *time.Duration `mapstructure:"idle-conn-timeout"`
	MaxConnLifetime     *time.Duration `mapstructure:"max-conn-lifetime"`
	Retry               RetryConfig    `mapstructure:"retry"`
}

// RetryConfig controls retries of transient upstream problems.
// MaxAttempts counts the first attempt, so 1 disables retries.
type RetryConfig struct {
	MaxAttempts     *int           `mapstructure:"max-attempts"`
	InitialInterval *time.Duration `mapstructure:"initial-interval"`
	MaxInterval     *time.Duration `mapstructure:"max-interval"`
}

func (c *ClientConfig) applyDefaults() {
	if c.Timeout == nil {
		c.Timeout = lo.ToPtr(DefaultTimeout)
	}
	if c.MaxIdleConnsPerHost == nil {
		c.MaxIdleConnsPerHost = lo.ToPtr(DefaultMaxIdleConnsPerHost)
	}
	if c.IdleConnTimeout == nil {
		c.IdleConnTimeout = lo.ToPtr(DefaultIdleConnTimeout)
	}
	if c.MaxConnLifetime == nil {
		c.MaxConnLifetime = lo.ToPtr(DefaultMaxConnLifetime)
	}
	if c.Retry.MaxAttempts == nil {
		c.Retry.MaxAttempts = lo.ToPtr(DefaultMaxAttempts)
	}
	if c.Retry.InitialInterval == nil {
		c.Retry.InitialInterval = lo.ToPtr(DefaultInitialInterval)
	}
	if c.Retry.MaxInterval == nil {
		c.Retry.MaxInterval = lo.ToPtr(DefaultMaxInterval)
	}
}

func (c ClientConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base-url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base-url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base-url %q must be an absolute URL", c.BaseURL)
	}
	if c.Retry.MaxAttempts != nil && *c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max-attempts must be at least 1")
	}
	return nil
}

func loadConfig(v *viper.Viper, name string) (ClientConfig, error) {
	var cfg ClientConfig
	if err := v.UnmarshalKey("clients."+name, &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("failed to unmarshal client config %q: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return ClientConfig{}, fmt.Errorf("invalid client config %q: %w", name, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}
