// Package config handles configuration loading, validation, and management for winquiet.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// FocusAssist configuration for the toggle orchestrator.
	FocusAssist FocusAssistConfig `toml:"focus_assist" json:"focus_assist" yaml:"focus_assist"`

	// Native configuration for the call gateway.
	Native NativeConfig `toml:"native" json:"native" yaml:"native"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Metrics configuration.
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// FocusAssistConfig holds toggle settings.
type FocusAssistConfig struct {
	// SettleDelayMs is how long to wait after a mode write before verifying
	// it took effect.
	SettleDelayMs int `toml:"settle_delay_ms" json:"settle_delay_ms" yaml:"settle_delay_ms"`

	// CheckSuccess enables the verify step after a mode write.
	CheckSuccess bool `toml:"check_success" json:"check_success" yaml:"check_success"`
}

// SettleDelay returns SettleDelayMs as a duration.
func (c FocusAssistConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// NativeConfig holds call gateway settings.
type NativeConfig struct {
	// SilentFail makes queries against missing entry points resolve to a
	// sentinel state instead of failing. Writes always fail.
	SilentFail bool `toml:"silent_fail" json:"silent_fail" yaml:"silent_fail"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the output format: text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is where logs go: stdout, stderr, file, discard.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file path when Output is "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB rotates the log file past this size. Zero disables rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated log files kept.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// Compress gzips rotated log files.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	// Enabled prints Prometheus text metrics to stderr when quietctl exits.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		FocusAssist: FocusAssistConfig{
			SettleDelayMs: 100,
			CheckSuccess:  true,
		},
		Native: NativeConfig{
			SilentFail: false,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(PlatformLogDir(), "quietctl.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	if v := os.Getenv("QUIETCTL_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
	}

	// Environment values are held to the same bounds as file values.

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode fills cfg from data in the format named by path's extension.
func decode(path string, data []byte, cfg *Config) error {
	switch filepath.Ext(path) {
	case ".json":
		if err := ValidateJSON(data); err != nil {
			return err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with QUIETCTL_. Values that do not parse
// are reported as ValidationErrors and leave the field unchanged.
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidationErrors

	if v := os.Getenv("QUIETCTL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("QUIETCTL_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("QUIETCTL_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("QUIETCTL_SETTLE_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.FocusAssist.SettleDelayMs = ms
		} else {
			errs = append(errs, ValidationError{
				Field:   "QUIETCTL_SETTLE_DELAY_MS",
				Message: fmt.Sprintf("not an integer: %q", v),
			})
		}
	}
	if v := os.Getenv("QUIETCTL_SILENT_FAIL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Native.SilentFail = b
		} else {
			errs = append(errs, ValidationError{
				Field:   "QUIETCTL_SILENT_FAIL",
				Message: fmt.Sprintf("not a boolean: %q", v),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode TOML: %w", err)
	}
	return nil
}
