package token

import (
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type tokenOptions struct {
	config           *Config
	disable          bool
	testClaims       *Claims
	useTestValidator bool
}

// Option configures the token module.
type Option func(*tokenOptions)

// WithTokenConfig provides a static Config instead of loading it from viper.
func WithTokenConfig(cfg Config) Option {
	return func(opts *tokenOptions) {
		opts.config = &cfg
	}
}

// WithDisableValidation accepts every token as an admin with the wildcard permission.
func WithDisableValidation() Option {
	return func(opts *tokenOptions) {
		opts.disable = true
	}
}

// WithTestClaims accepts every token as the given claims.
func WithTestClaims(claims Claims) Option {
	return func(opts *tokenOptions) {
		opts.testClaims = &claims
	}
}

// WithTestValidator accepts tokens created by GenerateTestToken.
func WithTestValidator() Option {
	return func(opts *tokenOptions) {
		opts.useTestValidator = true
	}
}

// NewTokenModule provides a Validator.
//
//	token.NewTokenModule()                              // PASETO v4, key from security.token
//	token.NewTokenModule(token.WithDisableValidation()) // everything allowed
//	token.NewTokenModule(token.WithTestValidator())     // base64 JSON tokens for e2e tests
func NewTokenModule(opts ...Option) fx.Option {
	o := &tokenOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch {
	case o.useTestValidator:
		return fx.Module("token", fx.Provide(newEncodedValidator))
	case o.testClaims != nil:
		return fx.Module("token", fx.Provide(func() Validator { return newStaticValidator(*o.testClaims) }))
	case o.disable:
		return fx.Module("token", fx.Provide(func(log *zap.Logger) Validator {
			log.Warn("token validation is disabled")
			return newStaticValidator(adminClaims())
		}))
	}

	return fx.Module("token",
		fx.Supply(o),
		fx.Provide(
			provideConfig,
			newPasetoValidator,
		),
	)
}

func provideConfig(o *tokenOptions, v *viper.Viper) (Config, error) {
	if o.config != nil {
		return *o.config, o.config.Validate()
	}
	return newConfig(v)
}
