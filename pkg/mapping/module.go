package mapping

import (
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type mappingOptions struct {
	config *Config
}

// Option configures the mapping module.
type Option func(*mappingOptions)

// WithMappingConfig provides a static Config instead of loading it from viper.
func WithMappingConfig(cfg Config) Option {
	return func(opts *mappingOptions) {
		opts.config = &cfg
	}
}

// NewMappingModule provides Config and *Factory.
func NewMappingModule(opts ...Option) fx.Option {
	o := &mappingOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("problem-mapping",
		fx.Supply(o),
		fx.Provide(
			provideConfig,
			provideFactory,
		),
	)
}

func provideConfig(o *mappingOptions, v *viper.Viper) (Config, error) {
	if o.config != nil {
		cfg := *o.config
		cfg.applyDefaults()
		return cfg, cfg.Validate()
	}
	return newConfig(v)
}

func provideFactory(cfg Config, log *zap.Logger) (*Factory, error) {
	f, err := NewFactory(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("problem mapping initialized",
		zap.Bool("include-stack-trace", cfg.IncludeStackTrace),
		zap.String("type-base-uri", cfg.TypeBaseURI),
		zap.Int("default-status", cfg.DefaultStatus),
		zap.Int("overrides", len(cfg.Mappings)),
	)
	return f, nil
}
