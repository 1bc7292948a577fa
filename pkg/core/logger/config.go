package logger

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config configures the zap logger.
//
// yaml example:
//
//	logger:
//	  level: info
//	  development: false
//	  stacktraceLevel: error
type Config struct {
	// Level is the minimum enabled level.
	Level zapcore.Level
	// Development switches to console encoding with human readable timestamps.
	Development bool
	// OutputPaths defaults to stderr.
	OutputPaths []string
	// ErrorOutputPaths receives internal logger errors. Defaults to stderr.
	ErrorOutputPaths []string
	// StacktraceLevel is the level from which stack traces are captured.
	StacktraceLevel zapcore.Level
}

// Validate rejects blank output paths.
func (c Config) Validate() error {
	if err := validatePaths(c.OutputPaths, "outputPaths"); err != nil {
		return err
	}
	return validatePaths(c.ErrorOutputPaths, "errorOutputPaths")
}

func validatePaths(paths []string, field string) error {
	for i, p := range paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%s[%d] cannot be empty", field, i)
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{Level: zapcore.InfoLevel, StacktraceLevel: zapcore.ErrorLevel}
}

func newConfig(v *viper.Viper) (Config, error) {
	sub := v.Sub("logger")
	if sub == nil {
		return defaultConfig(), nil
	}

	var raw struct {
		Level            string   `mapstructure:"level"`
		Development      bool     `mapstructure:"development"`
		OutputPaths      []string `mapstructure:"outputPaths"`
		ErrorOutputPaths []string `mapstructure:"errorOutputPaths"`
		StacktraceLevel  string   `mapstructure:"stacktraceLevel"`
	}
	if err := sub.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("failed to load logger config: %w", err)
	}

	cfg := defaultConfig()
	cfg.Development = raw.Development
	cfg.OutputPaths = raw.OutputPaths
	cfg.ErrorOutputPaths = raw.ErrorOutputPaths

	var err error
	if cfg.Level, err = parseLevel(raw.Level, cfg.Level); err != nil {
		return Config{}, fmt.Errorf("invalid log level '%s': %w", raw.Level, err)
	}
	if cfg.StacktraceLevel, err = parseLevel(raw.StacktraceLevel, cfg.StacktraceLevel); err != nil {
		return Config{}, fmt.Errorf("invalid stacktrace level '%s': %w", raw.StacktraceLevel, err)
	}

	return cfg, cfg.Validate()
}

func parseLevel(text string, fallback zapcore.Level) (zapcore.Level, error) {
	if text == "" {
		return fallback, nil
	}
	return zapcore.ParseLevel(text)
}
