package modules

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/health"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/middleware"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/problems"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/server"
	"github.com/Sokol111/ecommerce-problem-json/pkg/mapping"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/fx"
)

// httpOptions holds internal configuration for the HTTP module.
type httpOptions struct {
	serverConfig   *server.Config
	mappingConfig  *mapping.Config
	problemsConfig *problems.Config
	openAPIDoc     *openapi3.T
	noHealthRoutes bool
}

// HTTPOption is a functional option for configuring the HTTP module.
type HTTPOption func(*httpOptions)

// WithServerConfig provides a static server Config instead of loading it from viper.
func WithServerConfig(cfg server.Config) HTTPOption {
	return func(opts *httpOptions) {
		opts.serverConfig = &cfg
	}
}

// WithMappingConfig provides a static error mapping Config instead of loading it from viper.
func WithMappingConfig(cfg mapping.Config) HTTPOption {
	return func(opts *httpOptions) {
		opts.mappingConfig = &cfg
	}
}

// WithProblemsConfig provides a static problem response Config instead of loading it from viper.
func WithProblemsConfig(cfg problems.Config) HTTPOption {
	return func(opts *httpOptions) {
		opts.problemsConfig = &cfg
	}
}

// WithOpenAPIDoc validates requests against doc. Mismatches are answered
// with 400 problems, missing credentials with 401.
func WithOpenAPIDoc(doc *openapi3.T) HTTPOption {
	return func(opts *httpOptions) {
		opts.openAPIDoc = doc
	}
}

// WithoutHealthRoutes leaves /health/live and /health/ready unregistered.
func WithoutHealthRoutes() HTTPOption {
	return func(opts *httpOptions) {
		opts.noHealthRoutes = true
	}
}

// NewHTTPModule provides the problem+json HTTP stack: error mapping, the
// problem mapper, the gin engine with its middleware chain, health routes
// and the server.
//
// Example usage:
//
//	// Production - loads config from viper
//	modules.NewHTTPModule()
//
//	// Testing - with static config
//	modules.NewHTTPModule(
//	    modules.WithServerConfig(server.Config{Port: 0}),
//	    modules.WithMappingConfig(mapping.Config{IncludeStackTrace: true}),
//	)
func NewHTTPModule(opts ...HTTPOption) fx.Option {
	cfg := &httpOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		mappingModule(cfg),
		problemsModule(cfg),
		openAPIModule(cfg),
		middleware.NewGinModule(),
		healthModule(cfg),
		serverModule(cfg),
	)
}

func mappingModule(cfg *httpOptions) fx.Option {
	if cfg.mappingConfig != nil {
		return mapping.NewMappingModule(mapping.WithMappingConfig(*cfg.mappingConfig))
	}
	return mapping.NewMappingModule()
}

func problemsModule(cfg *httpOptions) fx.Option {
	if cfg.problemsConfig != nil {
		return problems.NewProblemsModule(problems.WithHTTPConfig(*cfg.problemsConfig))
	}
	return problems.NewProblemsModule()
}

func openAPIModule(cfg *httpOptions) fx.Option {
	if cfg.openAPIDoc == nil {
		return fx.Options()
	}
	return fx.Supply(cfg.openAPIDoc)
}

func healthModule(cfg *httpOptions) fx.Option {
	if cfg.noHealthRoutes {
		return fx.Options()
	}
	return health.NewHealthRoutesModule()
}

func serverModule(cfg *httpOptions) fx.Option {
	if cfg.serverConfig != nil {
		return server.NewHTTPServerModule(server.WithServerConfig(*cfg.serverConfig))
	}
	return server.NewHTTPServerModule()
}
