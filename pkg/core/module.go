// Package core wires configuration, logging and readiness tracking.
package core

import (
	"time"

	"github.com/Sokol111/ecommerce-problem-json/pkg/core/config"
	"github.com/Sokol111/ecommerce-problem-json/pkg/core/health"
	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"go.uber.org/fx"
)

type coreOptions struct {
	appConfig     *config.AppConfig
	loggerConfig  *logger.Config
	configPath    *string
	noDotEnv      bool
	noConfigFile  bool
	lifecycleTime time.Duration
}

// Option configures the core module.
type Option func(*coreOptions)

// WithAppConfig provides a static AppConfig instead of reading the environment.
func WithAppConfig(cfg config.AppConfig) Option {
	return func(opts *coreOptions) {
		opts.appConfig = &cfg
	}
}

// WithLoggerConfig provides a static logger Config instead of loading it from viper.
func WithLoggerConfig(cfg logger.Config) Option {
	return func(opts *coreOptions) {
		opts.loggerConfig = &cfg
	}
}

// WithConfigPath reads configuration from path.
func WithConfigPath(path string) Option {
	return func(opts *coreOptions) {
		opts.configPath = &path
	}
}

// WithoutEnvFile skips loading .env.
func WithoutEnvFile() Option {
	return func(opts *coreOptions) {
		opts.noDotEnv = true
	}
}

// WithoutConfigFile skips reading a YAML file; viper only sees the environment.
func WithoutConfigFile() Option {
	return func(opts *coreOptions) {
		opts.noConfigFile = true
	}
}

// WithLifecycleTimeout overrides the fx start and stop timeouts.
func WithLifecycleTimeout(d time.Duration) Option {
	return func(opts *coreOptions) {
		opts.lifecycleTime = d
	}
}

// NewCoreModule provides config, logger and readiness.
//
//	// production
//	core.NewCoreModule()
//
//	// tests
//	core.NewCoreModule(
//	    core.WithAppConfig(config.AppConfig{ServiceName: "orders", ...}),
//	    core.WithoutEnvFile(),
//	    core.WithoutConfigFile(),
//	)
func NewCoreModule(opts ...Option) fx.Option {
	o := &coreOptions{lifecycleTime: time.Minute}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Options(
		fx.StartTimeout(o.lifecycleTime),
		fx.StopTimeout(o.lifecycleTime),
		dotEnvModule(o),
		appConfigModule(o),
		viperModule(o),
		loggerModule(o),
		health.NewReadinessModule(),
	)
}

func dotEnvModule(o *coreOptions) fx.Option {
	if o.noDotEnv {
		return fx.Options()
	}
	return config.NewDotEnvModule()
}

func appConfigModule(o *coreOptions) fx.Option {
	if o.appConfig != nil {
		return config.NewAppConfigModule(config.WithAppConfig(*o.appConfig))
	}
	return config.NewAppConfigModule()
}

func viperModule(o *coreOptions) fx.Option {
	switch {
	case o.noConfigFile:
		return config.NewViperModule(config.WithoutConfigFile())
	case o.configPath != nil:
		return config.NewViperModule(config.WithConfigPath(*o.configPath))
	default:
		return config.NewViperModule()
	}
}

func loggerModule(o *coreOptions) fx.Option {
	if o.loggerConfig != nil {
		return logger.NewZapLoggingModule(logger.WithLoggerConfig(*o.loggerConfig))
	}
	return logger.NewZapLoggingModule()
}
