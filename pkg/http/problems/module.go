package problems

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/mapping"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type problemsOptions struct {
	config *Config
}

// Option configures the problems module.
type Option func(*problemsOptions)

// WithHTTPConfig provides a static Config instead of loading it from viper.
func WithHTTPConfig(cfg Config) Option {
	return func(opts *problemsOptions) {
		opts.config = &cfg
	}
}

// MapperOptionGroup is the fx value group of MapperOptions contributed by
// other modules, such as the problem counter of the observability module.
const MapperOptionGroup = `group:"problem_mapper_options"`

type mapperParams struct {
	fx.In
	Factory *mapping.Factory
	Config  Config
	Log     *zap.Logger
	Options []MapperOption `group:"problem_mapper_options"`
}

// NewProblemsModule provides the *Mapper and an ogen ErrorHandler built on it.
// Options in MapperOptionGroup are applied to the mapper.
func NewProblemsModule(opts ...Option) fx.Option {
	o := &problemsOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("problems",
		fx.Supply(o),
		fx.Provide(
			provideConfig,
			provideMapper,
			NewOgenErrorHandler,
		),
	)
}

func provideConfig(o *problemsOptions, v *viper.Viper) (Config, error) {
	if o.config != nil {
		cfg := *o.config
		cfg.applyDefaults()
		return cfg, cfg.Validate()
	}
	return newConfig(v)
}

func provideMapper(p mapperParams) *Mapper {
	opts := append([]MapperOption{WithLogger(p.Log)}, p.Options...)
	return NewMapper(p.Factory, p.Config, opts...)
}
