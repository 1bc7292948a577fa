package modules

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/security/token"
	"go.uber.org/fx"
)

// securityOptions holds internal configuration for the security module.
type securityOptions struct {
	tokenConfig *token.Config
	disable     bool
	testClaims  *token.Claims
}

// SecurityOption is a functional option for configuring the security module.
type SecurityOption func(*securityOptions)

// WithTokenConfig provides a static token Config instead of loading it from viper.
func WithTokenConfig(cfg token.Config) SecurityOption {
	return func(opts *securityOptions) {
		opts.tokenConfig = &cfg
	}
}

// WithoutSecurity accepts every token as an admin.
func WithoutSecurity() SecurityOption {
	return func(opts *securityOptions) {
		opts.disable = true
	}
}

// WithTestClaims provides a validator that always returns the given claims.
func WithTestClaims(claims token.Claims) SecurityOption {
	return func(opts *securityOptions) {
		opts.testClaims = &claims
	}
}

// NewSecurityModule provides the bearer token Validator. Its failures map to
// 401 and 403 problems.
//
//	// tests with a specific user
//	modules.NewSecurityModule(
//	    modules.WithTestClaims(token.Claims{
//	        UserID:      "user-123",
//	        Permissions: []string{"product:read"},
//	        Type:        token.TypeAccess,
//	    }),
//	)
func NewSecurityModule(opts ...SecurityOption) fx.Option {
	cfg := &securityOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch {
	case cfg.testClaims != nil:
		return token.NewTokenModule(token.WithTestClaims(*cfg.testClaims))
	case cfg.disable:
		return token.NewTokenModule(token.WithDisableValidation())
	case cfg.tokenConfig != nil:
		return token.NewTokenModule(token.WithTokenConfig(*cfg.tokenConfig))
	default:
		return token.NewTokenModule()
	}
}
