package problems

import (
	"fmt"

	"github.com/spf13/viper"
)

// InstanceMode selects how the instance member of a response is filled.
type InstanceMode string

const (
	// InstanceNone leaves instance to the error or problem.
	InstanceNone InstanceMode = "none"
	// InstancePath uses the request path.
	InstancePath InstanceMode = "path"
	// InstanceUUID generates a urn:uuid: per response.
	InstanceUUID InstanceMode = "uuid"
)

// Config controls HTTP rendering of problems.
//
// yaml example:
//
//	problem:
//	  http:
//	    instance: path
//	    html: true
type Config struct {
	Instance InstanceMode `mapstructure:"instance"`
	// HTML renders an error page for clients that prefer text/html.
	HTML bool `mapstructure:"html"`
}

func (c *Config) applyDefaults() {
	if c.Instance == "" {
		c.Instance = InstanceNone
	}
}

// Validate checks the instance mode.
func (c Config) Validate() error {
	switch c.Instance {
	case InstanceNone, InstancePath, InstanceUUID:
		return nil
	default:
		return fmt.Errorf("problem.http.instance must be one of none, path, uuid; got %q", c.Instance)
	}
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("problem.http"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load problem http config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
