// Package config loads the settings shared by the algebra CLI and the tool
// server from an optional algebra.yaml file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	algebra "github.com/njchilds90/goalgebra"
)

// Config is the top-level algebra.yaml document.
type Config struct {
	// Listen is the address the tool server binds, e.g. ":8080".
	Listen string `yaml:"listen,omitempty"`

	// StepLimit bounds the frames processed by one simplifier step.
	StepLimit int `yaml:"step_limit,omitempty"`

	// MaxPasses bounds the steps taken by one simplifier run.
	MaxPasses int `yaml:"max_passes,omitempty"`

	// Sessions is the number of live trees the server keeps before
	// evicting the least recently used one.
	Sessions int `yaml:"sessions,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
}

const (
	DefaultListen   = ":8080"
	DefaultSessions = 1024
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses an algebra.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses algebra.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if c.StepLimit < 0 {
		return fmt.Errorf("step_limit must not be negative, got %d", c.StepLimit)
	}
	if c.MaxPasses < 0 {
		return fmt.Errorf("max_passes must not be negative, got %d", c.MaxPasses)
	}
	if c.Sessions < 1 {
		return fmt.Errorf("sessions must be at least 1, got %d", c.Sessions)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.StepLimit == 0 {
		c.StepLimit = algebra.DefaultStepLimit
	}
	if c.MaxPasses == 0 {
		c.MaxPasses = algebra.DefaultMaxPasses
	}
	if c.Sessions == 0 {
		c.Sessions = DefaultSessions
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", c.LogLevel)
}

// SimplifierOptions returns the options that configure a simplifier from c.
func (c *Config) SimplifierOptions(logger *slog.Logger) []algebra.Option {
	return []algebra.Option{
		algebra.WithStepLimit(c.StepLimit),
		algebra.WithMaxPasses(c.MaxPasses),
		algebra.WithLogger(logger),
	}
}
