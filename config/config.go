// Package config loads the depmatch configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/depmatch/rule"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = ".depmatch.yaml"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config is the content of a .depmatch.yaml file.
type Config struct {
	Name string `yaml:"name"`
	// Rules is the rule file path, relative to the configuration file.
	Rules string `yaml:"rules"`
	// Mode is the default match mode for rules that set none.
	Mode rule.Mode `yaml:"mode"`
	// Output is either "text" or "json".
	Output string `yaml:"output"`
	// Workers bounds concurrent file processing (0 = runtime.NumCPU()).
	Workers  int  `yaml:"workers"`
	Progress bool `yaml:"progress"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Name:     "depmatch",
		Rules:    "rules.yaml",
		Mode:     rule.ModeAny,
		Output:   OutputText,
		Workers:  0,
		Progress: true,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Rules == "" {
		return fmt.Errorf("rules is required")
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		return fmt.Errorf("output must be %q or %q, got %q", OutputText, OutputJSON, c.Output)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// RulesPath resolves Rules against the directory of the configuration
// file at configPath.
func (c *Config) RulesPath(configPath string) string {
	if filepath.IsAbs(c.Rules) {
		return c.Rules
	}
	return filepath.Join(filepath.Dir(configPath), c.Rules)
}

// LoadFromFile loads configuration from a YAML file. A missing file
// yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// SaveToFile writes the configuration to path as YAML.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
