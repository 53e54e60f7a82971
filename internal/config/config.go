// Package config handles reading and writing docflow.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/docflow/logging"
	"github.com/hupe1980/docflow/pipeline"
)

// Config is the top-level structure for docflow.yaml.
type Config struct {
	Version    int              `yaml:"version"`
	DataDir    string           `yaml:"data_dir"`
	Retry      RetryConfig      `yaml:"retry"`
	Log        LogConfig        `yaml:"log"`
	Engagement EngagementConfig `yaml:"engagement"`
}

// RetryConfig controls the per-phase retry policy.
type RetryConfig struct {
	Cap       int `yaml:"cap"`
	BackoffMS int `yaml:"backoff_ms"` // ms
}

// Backoff returns the configured backoff as a duration.
func (r RetryConfig) Backoff() time.Duration {
	return time.Duration(r.BackoffMS) * time.Millisecond
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `yaml:"format"` // "text" | "json"
}

// LogLevel maps the configured level string onto the logging enum. Unknown
// values fall back to info.
func (l LogConfig) LogLevel() logging.LogLevel {
	switch strings.ToLower(l.Level) {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

// EngagementConfig selects the engagement provider used by the pipeline.
type EngagementConfig struct {
	Provider string `yaml:"provider"` // "mock" | "anthropic" | "openai"
	Model    string `yaml:"model"`
}

// configFile is the file name relative to the directory passed to
// ReadConfig/WriteConfig.
const configFile = "docflow.yaml"

// ReadConfig reads docflow.yaml from the given directory.
// Returns an error if the file is not found or the YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to docflow.yaml in the given directory, creating the
// directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with the pipeline defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		DataDir: pipeline.DefaultDataDir,
		Retry: RetryConfig{
			Cap:       pipeline.DefaultRetryCap,
			BackoffMS: int(pipeline.DefaultRetryBackoff / time.Millisecond),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Engagement: EngagementConfig{
			Provider: "mock",
		},
	}
}
