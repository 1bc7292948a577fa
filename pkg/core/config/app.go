package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	envAppEnv            = "APP_ENV"
	envAppServiceName    = "APP_SERVICE_NAME"
	envAppServiceVersion = "APP_SERVICE_VERSION"
	envConfigFile        = "CONFIG_FILE"
	envConfigDir         = "CONFIG_DIR"
	envConfigName        = "CONFIG_NAME"

	defaultConfigDir = "./configs"
)

// AppConfig identifies the running service and where its config file lives.
type AppConfig struct {
	ServiceName    string
	ServiceVersion string
	// Environment is the deployment environment, e.g. "local", "staging", "pro".
	Environment string
	// ConfigFile is the resolved path of the YAML config file.
	ConfigFile string
}

type appConfigOptions struct {
	config *AppConfig
}

// AppConfigOption configures the app config module.
type AppConfigOption func(*appConfigOptions)

// WithAppConfig provides a static AppConfig instead of reading the environment.
func WithAppConfig(cfg AppConfig) AppConfigOption {
	return func(opts *appConfigOptions) {
		opts.config = &cfg
	}
}

// NewAppConfigModule provides AppConfig.
//
// Required environment variables: APP_ENV, APP_SERVICE_NAME, APP_SERVICE_VERSION.
// The config file is CONFIG_FILE, or CONFIG_DIR/CONFIG_NAME.yaml which defaults
// to ./configs/config.<APP_ENV>.yaml.
func NewAppConfigModule(opts ...AppConfigOption) fx.Option {
	o := &appConfigOptions{}
	for _, opt := range opts {
		opt(o)
	}

	provide := fx.Provide(newAppConfig)
	if o.config != nil {
		provide = fx.Supply(*o.config)
	}

	return fx.Module("appconfig",
		provide,
		fx.Invoke(func(log *zap.Logger, cfg AppConfig) {
			log.Info("loaded application config",
				zap.String("service", cfg.ServiceName),
				zap.String("version", cfg.ServiceVersion),
				zap.String("environment", cfg.Environment),
				zap.String("config-file", cfg.ConfigFile),
			)
		}),
	)
}

func newAppConfig() (AppConfig, error) {
	env, err := requireEnv(envAppEnv)
	if err != nil {
		return AppConfig{}, err
	}
	name, err := requireEnv(envAppServiceName)
	if err != nil {
		return AppConfig{}, err
	}
	version, err := requireEnv(envAppServiceVersion)
	if err != nil {
		return AppConfig{}, err
	}

	return AppConfig{
		ServiceName:    name,
		ServiceVersion: version,
		Environment:    env,
		ConfigFile:     resolveConfigFile(env),
	}, nil
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func resolveConfigFile(env string) string {
	if file := os.Getenv(envConfigFile); file != "" {
		return file
	}

	dir := os.Getenv(envConfigDir)
	if dir == "" {
		dir = defaultConfigDir
	}
	name := os.Getenv(envConfigName)
	if name == "" {
		name = "config." + env
	}
	return filepath.Join(dir, name+".yaml")
}
