package mapping

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
	"github.com/spf13/viper"
)

// Config controls how errors are turned into problems.
//
// yaml example:
//
//	problem:
//	  include-stack-trace: false
//	  type-base-uri: https://errors.example.com/
//	  default-status: 500
//	  mappings:
//	    not-found:
//	      title: Resource Not Found
//	    conflict:
//	      status: 422
type Config struct {
	// IncludeStackTrace leaks internal error messages and stacks. Use only outside production.
	IncludeStackTrace bool `mapstructure:"include-stack-trace"`
	// TypeBaseURI prefixes generated type URIs. When empty every problem is about:blank.
	TypeBaseURI string `mapstructure:"type-base-uri"`
	// DefaultStatus is used for errors that match no category.
	DefaultStatus int `mapstructure:"default-status"`
	// Mappings overrides rules of the default table, keyed by category name.
	Mappings map[string]RuleConfig `mapstructure:"mappings"`
}

// RuleConfig overrides single fields of a Rule.
type RuleConfig struct {
	Status       int    `mapstructure:"status"`
	Title        string `mapstructure:"title"`
	Slug         string `mapstructure:"slug"`
	ExposeDetail *bool  `mapstructure:"expose-detail"`
}

func (c *Config) applyDefaults() {
	if c.DefaultStatus == 0 {
		c.DefaultStatus = http.StatusInternalServerError
	}
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	if !problem.ValidStatus(c.DefaultStatus) {
		return fmt.Errorf("default-status %d is outside %d-%d", c.DefaultStatus, problem.MinStatus, problem.MaxStatus)
	}
	if c.TypeBaseURI != "" {
		u, err := url.Parse(c.TypeBaseURI)
		if err != nil {
			return fmt.Errorf("invalid type-base-uri: %w", err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("type-base-uri %q must be an absolute URI", c.TypeBaseURI)
		}
	}
	if _, err := buildTable(c.Mappings); err != nil {
		return err
	}
	return nil
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("problem"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load problem config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid problem config: %w", err)
	}
	return cfg, nil
}
