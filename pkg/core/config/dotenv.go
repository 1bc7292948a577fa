package config

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type dotEnvOptions struct {
	path string
}

// DotEnvOption configures the dotenv module.
type DotEnvOption func(*dotEnvOptions)

// WithDotEnvPath loads variables from path instead of ".env".
func WithDotEnvPath(path string) DotEnvOption {
	return func(opts *dotEnvOptions) {
		opts.path = path
	}
}

// NewDotEnvModule loads a .env file into the process environment.
// Loading happens when the module is built, before any provider reads the
// environment. A missing file is not an error.
func NewDotEnvModule(opts ...DotEnvOption) fx.Option {
	o := &dotEnvOptions{path: ".env"}
	for _, opt := range opts {
		opt(o)
	}

	loadErr := godotenv.Load(o.path)

	return fx.Module("dotenv",
		fx.Invoke(func(lc fx.Lifecycle, log *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if loadErr != nil {
						log.Debug("no .env file loaded", zap.String("path", o.path), zap.Error(loadErr))
						return nil
					}
					log.Info("loaded .env file", zap.String("path", o.path))
					return nil
				},
			})
		}),
	)
}
