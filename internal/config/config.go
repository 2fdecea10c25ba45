// Package config loads symflow settings from YAML files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/go-symflow/internal/log"
	"github.com/l3aro/go-symflow/pkg/checks"
	"github.com/l3aro/go-symflow/pkg/complexity"
)

// DirName is the directory holding config files, both in the user's home and
// in a project root.
const DirName = ".symflow"

// CacheConfig controls the persistent analysis cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" env:"SYMFLOW_CACHE_ENABLED"`
	Dir        string `yaml:"dir" env:"SYMFLOW_CACHE_DIR"`
	MaxEntries int    `yaml:"max_entries" env:"SYMFLOW_CACHE_MAX_ENTRIES"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" env:"SYMFLOW_LOG_LEVEL"`
	JSON  bool   `yaml:"json" env:"SYMFLOW_LOG_JSON"`
}

// Config holds all configuration for symflow.
type Config struct {
	// MaxComplexity is the number of conditional operators an expression may
	// hold before it is reported.
	MaxComplexity int `yaml:"max_complexity" env:"SYMFLOW_MAX_COMPLEXITY"`

	// MaxIterations caps the fixpoint loop of one function. Zero derives the
	// cap from the graph size.
	MaxIterations int `yaml:"max_iterations" env:"SYMFLOW_MAX_ITERATIONS"`

	// Workers bounds the number of files analyzed concurrently.
	Workers int `yaml:"workers" env:"SYMFLOW_WORKERS"`

	// Rules lists the enabled rule keys. Empty enables every rule.
	Rules []string `yaml:"rules" env:"SYMFLOW_RULES"`

	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxComplexity: complexity.DefaultMax,
		MaxIterations: 0,
		Workers:       4,
		Rules:         nil,
		Cache: CacheConfig{
			Enabled:    true,
			Dir:        filepath.Join(DirName, "cache"),
			MaxEntries: 1024,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// GlobalConfigFilePath returns the global config file path (~/.symflow/config.yaml).
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DirName, "config.yaml")
	}
	return filepath.Join(home, DirName, "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.symflow/config.yaml).
func ProjectConfigFilePath() string {
	return filepath.Join(DirName, "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables (SYMFLOW_*)
// 2. Project-level config (./.symflow/config.yaml)
// 3. Global config (~/.symflow/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	return load(GlobalConfigFilePath(), ProjectConfigFilePath())
}

func load(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return load(path)
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"SYMFLOW_MAX_COMPLEXITY", &cfg.MaxComplexity},
		{"SYMFLOW_MAX_ITERATIONS", &cfg.MaxIterations},
		{"SYMFLOW_WORKERS", &cfg.Workers},
		{"SYMFLOW_CACHE_MAX_ENTRIES", &cfg.Cache.MaxEntries},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", e.key, v, err)
		}
		*e.dst = i
	}

	if v := os.Getenv("SYMFLOW_RULES"); v != "" {
		cfg.Rules = nil
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				cfg.Rules = append(cfg.Rules, r)
			}
		}
	}
	if v := os.Getenv("SYMFLOW_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("SYMFLOW_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("SYMFLOW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SYMFLOW_LOG_JSON"); v != "" {
		cfg.Log.JSON = parseBool(v)
	}
	return nil
}

// Validate checks that the configuration holds usable values.
func (c *Config) Validate() error {
	if c.MaxComplexity < 1 {
		return fmt.Errorf("max_complexity must be at least 1, got %d", c.MaxComplexity)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative, got %d", c.MaxIterations)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := checks.Select(c.Rules); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Cache.Enabled {
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required when the cache is enabled")
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be at least 1, got %d", c.Cache.MaxEntries)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// parseBool accepts the spellings the environment commonly uses.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
