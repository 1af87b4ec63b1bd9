package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/autopilot-sh/autopilot/internal/types"
)

// ConfigLoader handles loading configuration from files.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path.
// Values start from DefaultConfig so a partial file only overrides what it
// names. String values support ${VAR_NAME} environment interpolation.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	interpolateConfig(cfg)

	if err := l.validator.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns the default configuration.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := l.validator.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return l.Load(path)
}

// interpolateConfig applies ${VAR_NAME} interpolation to the string fields
// that commonly carry environment-dependent values.
func interpolateConfig(cfg *Config) {
	cfg.Automation.DefaultLevel = interpolateString(cfg.Automation.DefaultLevel)
	cfg.Logging.Level = interpolateString(cfg.Logging.Level)
	cfg.Logging.Format = interpolateString(cfg.Logging.Format)
	cfg.Tracing.Endpoint = interpolateString(cfg.Tracing.Endpoint)
	cfg.Metrics.Provider = interpolateString(cfg.Metrics.Provider)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables leave the original placeholder intact.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}
