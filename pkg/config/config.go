// Package config loads the protosign YAML configuration. The document
// is versioned and strictly decoded: unknown keys anywhere are a
// ConfigError, not a warning.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/protosign/pkg/breaking"
)

// Config is the v1 configuration document.
type Config struct {
	Version  string   `yaml:"version"`
	Breaking Breaking `yaml:"breaking"`
}

// Breaking configures the rule selector.
type Breaking struct {
	UseCategories          []string `yaml:"use_categories"`
	UseRules               []string `yaml:"use_rules"`
	ExceptRules            []string `yaml:"except_rules"`
	Ignore                 []string `yaml:"ignore"`
	IgnoreUnstablePackages bool     `yaml:"ignore_unstable_packages"`
}

// ConfigError reports a rejected configuration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// Default returns the configuration used when no file is given: the
// FILE and WIRE_JSON default-enabled rules.
func Default() *Config {
	return &Config{Version: "v1"}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}
	return Parse(data)
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the document against the v1 schema: the version
// marker, category names, rule ids, the categories/rules exclusivity,
// and glob syntax.
func (c *Config) Validate() error {
	if c.Version != "v1" {
		return &ConfigError{Reason: fmt.Sprintf("unsupported version %q, expected \"v1\"", c.Version)}
	}
	// The selector performs the full resolution checks; running it once
	// here surfaces unknown ids and malformed globs at load time.
	if _, err := breaking.Resolve(c.Breaking.Selection()); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	return nil
}

// Selection converts the breaking section into the selector's input.
func (b Breaking) Selection() breaking.Selection {
	return breaking.Selection{
		UseCategories:          b.UseCategories,
		UseRules:               b.UseRules,
		ExceptRules:            b.ExceptRules,
		Ignore:                 b.Ignore,
		IgnoreUnstablePackages: b.IgnoreUnstablePackages,
	}
}
