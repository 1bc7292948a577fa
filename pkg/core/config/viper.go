package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type viperOptions struct {
	configPath   *string
	noConfigFile bool
}

// ViperOption configures the viper module.
type ViperOption func(*viperOptions)

// WithConfigPath reads the given file instead of AppConfig.ConfigFile.
func WithConfigPath(path string) ViperOption {
	return func(opts *viperOptions) {
		opts.configPath = &path
	}
}

// WithoutConfigFile provides a viper instance backed by environment variables only.
func WithoutConfigFile() ViperOption {
	return func(opts *viperOptions) {
		opts.noConfigFile = true
	}
}

// FilePath is the config file read by viper. Empty means none.
type FilePath string

// NewViperModule provides *viper.Viper. Environment variables override file
// values, with "." and "-" in keys replaced by "_" (problem.default-status is
// PROBLEM_DEFAULT_STATUS).
func NewViperModule(opts ...ViperOption) fx.Option {
	o := &viperOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("viper",
		fx.Provide(
			func(app AppConfig) FilePath { return resolveConfigPath(o, app) },
			newViper,
		),
		fx.Invoke(func(log *zap.Logger, v *viper.Viper) {
			log.Info("configuration loaded",
				zap.String("config-file", v.ConfigFileUsed()),
				zap.Int("keys", len(v.AllKeys())),
			)
		}),
	)
}

func resolveConfigPath(o *viperOptions, app AppConfig) FilePath {
	switch {
	case o.noConfigFile:
		return ""
	case o.configPath != nil:
		return FilePath(*o.configPath)
	default:
		return FilePath(app.ConfigFile)
	}
}

func newViper(file FilePath) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if file == "" {
		return v, nil
	}

	v.SetConfigFile(string(file))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", file, err)
	}
	return v, nil
}
