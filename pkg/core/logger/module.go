package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type loggerOptions struct {
	config *Config
}

// Option configures the logger module.
type Option func(*loggerOptions)

// WithLoggerConfig provides a static Config instead of loading it from viper.
func WithLoggerConfig(cfg Config) Option {
	return func(opts *loggerOptions) {
		opts.config = &cfg
	}
}

// NewZapLoggingModule provides *zap.Logger and its zap.AtomicLevel, and routes
// fx events through the logger.
func NewZapLoggingModule(opts ...Option) fx.Option {
	o := &loggerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Options(
		fx.Supply(o),
		fx.Provide(
			provideConfig,
			provideLogger,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

func provideConfig(o *loggerOptions, v *viper.Viper) (Config, error) {
	if o.config != nil {
		return *o.config, nil
	}
	return newConfig(v)
}

func provideLogger(lc fx.Lifecycle, conf Config) (*zap.Logger, zap.AtomicLevel, error) {
	log, level, err := newLogger(conf)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to create logger: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return ignoreSyncError(log.Sync())
		},
	})
	return log, level, nil
}

// ignoreSyncError drops the EINVAL/ENOTTY that Sync reports for stderr on
// some platforms.
func ignoreSyncError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && (errors.Is(pathErr.Err, syscall.EINVAL) || errors.Is(pathErr.Err, syscall.ENOTTY)) {
		return nil
	}
	return err
}
