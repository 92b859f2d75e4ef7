// Package config defines the application configuration and loads it from a
// YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"github.com/iwvelando/ingredient-optimizer/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for ingredient-optimizer.
type Configuration struct {
	Optimizer OptimizerConfig `mapstructure:"optimizer" yaml:"optimizer"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging,omitempty"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output,omitempty"`
}

// OptimizerConfig locates the remote optimizer service.
type OptimizerConfig struct {
	BaseURL   string        `mapstructure:"baseUrl" yaml:"baseUrl"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"` // zero: transport default
	UserAgent string        `mapstructure:"userAgent" yaml:"userAgent,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds CLI output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv, json
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("optimizer.baseUrl", "")
	v.SetDefault("optimizer.timeout", constants.DefaultOptimizerTimeout)
	v.SetDefault("optimizer.userAgent", "")
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The base URL keeps the names it has always been deployed with.
	_ = v.BindEnv("optimizer.baseUrl", "OPTIMIZER_API_URL", "API_URL", "NEXT_PUBLIC_API_URL")
	_ = v.BindEnv("optimizer.timeout", "OPTIMIZER_API_TIMEOUT")

	return v
}

// LoadConfiguration loads the YAML configuration at configPath and applies
// environment overrides. An empty path skips the file and uses defaults plus
// the environment.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s does not exist", configPath)
			}
			return nil, fmt.Errorf("error reading config file, %w", err)
		}

		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	configuration.Optimizer.BaseURL = strings.TrimSpace(configuration.Optimizer.BaseURL)
	return &configuration, nil
}

// Validate rejects settings that can never work.
func (c *Configuration) Validate() error {
	if c.Optimizer.Timeout < 0 {
		return fmt.Errorf("optimizer.timeout must not be negative, got %s", c.Optimizer.Timeout)
	}
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return err
		}
	}
	return nil
}

// RequireOptimizer reports a missing optimizer base URL. Commands that call
// the optimizer check it before starting; listing ingredients does not.
func (c *Configuration) RequireOptimizer() error {
	if strings.TrimSpace(c.Optimizer.BaseURL) == "" {
		return errors.New("optimizer.baseUrl is not set (set OPTIMIZER_API_URL or pass --api-url)")
	}
	return nil
}

// ValidateConfiguration returns warnings for settings that are allowed but
// probably unintended.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if c.Optimizer.Timeout == 0 {
		warnings = append(warnings,
			"optimizer.timeout is not set; requests wait for the transport default")
	}
	return warnings
}
