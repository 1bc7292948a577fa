package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config holds the HTTP server settings and the limits enforced by the gin
// middleware chain. Every limit rejects requests with a problem response.
//
// yaml example:
//
//	server:
//	  port: 8080
//	  max-body-bytes: 1048576
//	  timeout:
//	    request-timeout: 30s
//	  rate-limit:
//	    enabled: false
type Config struct {
	Port int `mapstructure:"port"`
	// MaxBodyBytes rejects larger request bodies with 413. Zero disables the limit.
	MaxBodyBytes int64 `mapstructure:"max-body-bytes"`

	Connection     ConnectionConfig     `mapstructure:"connection"`
	Timeout        TimeoutConfig        `mapstructure:"timeout"`
	RateLimit      RateLimitConfig      `mapstructure:"rate-limit"`
	Bulkhead       BulkheadConfig       `mapstructure:"bulkhead"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit-breaker"`
}

// ConnectionConfig holds http.Server timeouts. Hitting one of them closes the
// connection without a response.
type ConnectionConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read-header-timeout"`
	ReadTimeout       time.Duration `mapstructure:"read-timeout"`
	WriteTimeout      time.Duration `mapstructure:"write-timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle-timeout"`
	MaxHeaderBytes    int           `mapstructure:"max-header-bytes"`
}

// TimeoutConfig bounds handler execution. Exceeding it yields 504.
type TimeoutConfig struct {
	Enabled        *bool         `mapstructure:"enabled"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
}

// RateLimitConfig yields 429 above the configured rate.
type RateLimitConfig struct {
	Enabled           *bool `mapstructure:"enabled"`
	RequestsPerSecond int   `mapstructure:"requests-per-second"`
	Burst             int   `mapstructure:"burst"`
}

// BulkheadConfig yields 503 when MaxConcurrent requests are in flight for longer than Timeout.
type BulkheadConfig struct {
	Enabled       *bool         `mapstructure:"enabled"`
	MaxConcurrent int           `mapstructure:"max-concurrent"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// CircuitBreakerConfig yields 503 while the breaker is open.
type CircuitBreakerConfig struct {
	Enabled          *bool         `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure-threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Interval         time.Duration `mapstructure:"interval"`
	MaxRequests      uint32        `mapstructure:"max-requests"`
}

// ApplyDefaults fills zero values. Limits are enabled unless switched off.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	c.Timeout.setDefaults()
	c.Connection.setDefaults(c.Timeout)
	c.RateLimit.setDefaults()
	c.Bulkhead.setDefaults()
	c.CircuitBreaker.setDefaults()
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Port)
	}
	if c.MaxBodyBytes < 0 {
		return errors.New("server.max-body-bytes must not be negative")
	}
	if lo.FromPtr(c.RateLimit.Enabled) && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("server.rate-limit requires positive requests-per-second and burst")
	}
	if lo.FromPtr(c.Bulkhead.Enabled) && c.Bulkhead.MaxConcurrent <= 0 {
		return errors.New("server.bulkhead.max-concurrent must be positive")
	}
	return nil
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("server"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load server config: %w", err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

func (c *ConnectionConfig) setDefaults(timeout TimeoutConfig) {
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 10 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		// leave room for the timeout middleware to write its 504
		c.WriteTimeout = 40 * time.Second
		if lo.FromPtr(timeout.Enabled) && timeout.RequestTimeout > 0 {
			c.WriteTimeout = timeout.RequestTimeout + 10*time.Second
		}
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.MaxHeaderBytes == 0 {
		c.MaxHeaderBytes = 1 << 20
	}
}

func (c *TimeoutConfig) setDefaults() {
	if c.Enabled == nil {
		c.Enabled = lo.ToPtr(true)
	}
	if *c.Enabled && c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

func (c *RateLimitConfig) setDefaults() {
	if c.Enabled == nil {
		c.Enabled = lo.ToPtr(true)
	}
	if !*c.Enabled {
		return
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 1000
	}
	if c.Burst == 0 {
		c.Burst = 100
	}
}

func (c *BulkheadConfig) setDefaults() {
	if c.Enabled == nil {
		c.Enabled = lo.ToPtr(true)
	}
	if !*c.Enabled {
		return
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 500
	}
	if c.Timeout == 0 {
		c.Timeout = 100 * time.Millisecond
	}
}

func (c *CircuitBreakerConfig) setDefaults() {
	if c.Enabled == nil {
		c.Enabled = lo.ToPtr(true)
	}
	if !*c.Enabled {
		return
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Interval == 0 {
		c.Interval = 60 * time.Second
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = 1
	}
}
