package server

import (
	"context"
	"net/http"

	"github.com/Sokol111/ecommerce-problem-json/pkg/core/health"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serverOptions struct {
	config *Config
}

// Option configures the server module.
type Option func(*serverOptions)

// WithServerConfig provides a static Config instead of loading it from viper.
func WithServerConfig(cfg Config) Option {
	return func(opts *serverOptions) {
		opts.config = &cfg
	}
}

// NewHTTPServerModule provides Config and serves the container's http.Handler
// for the lifetime of the application.
func NewHTTPServerModule(opts ...Option) fx.Option {
	o := &serverOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("http-server",
		fx.Supply(o),
		fx.Provide(provideConfig),
		fx.Invoke(startHTTPServer),
	)
}

func provideConfig(o *serverOptions, v *viper.Viper, log *zap.Logger) (Config, error) {
	if o.config != nil {
		cfg := *o.config
		cfg.ApplyDefaults()
		return cfg, cfg.Validate()
	}
	cfg, err := newConfig(v)
	if err != nil {
		return cfg, err
	}
	log.Info("loaded server config", zap.Int("port", cfg.Port))
	return cfg, nil
}

func startHTTPServer(lc fx.Lifecycle, log *zap.Logger, conf Config, handler http.Handler, readiness health.ComponentManager, shutdowner fx.Shutdowner) {
	var srv Server
	markReady := readiness.AddComponent("http-server")
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// routes are registered by now
			srv = newServer(log, conf, handler)

			go func() {
				if err := srv.ServeWithReadyCallback(markReady); err != nil {
					log.Error("HTTP server failed, shutting down application", zap.Error(err))
					_ = shutdowner.Shutdown() //nolint:errcheck // shutdown is best-effort
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if srv != nil {
				return srv.Shutdown(ctx)
			}
			return nil
		},
	})
}
