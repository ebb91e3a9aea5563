package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the process-level configuration for the targeting and
// dispatch core.
type EngineConfig struct {
	Project string        `yaml:"project"`
	Version int           `yaml:"version"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
	Journal JournalConfig `yaml:"journal"`
	World   WorldConfig   `yaml:"world"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type TracingConfig struct {
	Enabled  bool `yaml:"enabled"`
	SlowestN int  `yaml:"slowest_n"`
}

// JournalConfig selects where dispatched events go. An empty DSN keeps them
// in memory.
type JournalConfig struct {
	DSN string `yaml:"dsn"`
}

type WorldConfig struct {
	Paths []string `yaml:"paths"`
}

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading engine config: %w", err)
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading engine config: %w", err)
	}

	if err := validateEngineConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading engine config: %w", err)
	}

	return &cfg, nil
}

func validateEngineConfig(cfg *EngineConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if len(cfg.World.Paths) == 0 {
		return fmt.Errorf("at least one world path is required")
	}
	for i, path := range cfg.World.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("world path %d is empty", i)
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if _, ok := logLevels[cfg.Logging.Level]; !ok {
		return fmt.Errorf("unknown log level: %s", cfg.Logging.Level)
	}
	if cfg.Tracing.SlowestN < 0 {
		return fmt.Errorf("tracing slowest_n must not be negative")
	}
	return nil
}
