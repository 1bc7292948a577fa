package token

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the PASETO verification settings.
//
// yaml example:
//
//	security:
//	  token:
//	    public-key: 1eb9dbbbbc047c03fd70604e0071f0987e16b28b757225c11f00415d0e20b1a2
type Config struct {
	// PublicKey is the hex-encoded Ed25519 public key.
	PublicKey string `mapstructure:"public-key"`
}

func (c Config) Validate() error {
	if c.PublicKey == "" {
		return errors.New("security.token.public-key is required")
	}
	return nil
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	sub := v.Sub("security.token")
	if sub == nil {
		return cfg, errors.New("security.token configuration section is required")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load token config: %w", err)
	}
	return cfg, cfg.Validate()
}
