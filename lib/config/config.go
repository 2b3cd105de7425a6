// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the master configuration for costscope tools.
type Config struct {
	// Root is the base directory for costscope data. The path fields
	// below default to locations under it and may reference it as
	// ${COSTSCOPE_ROOT}.
	Root string `yaml:"root" envconfig:"ROOT"`

	// Paths locates the entitlement artifacts.
	Paths PathsConfig `yaml:"paths" envconfig:"PATHS"`

	// Audit configures the decision trail.
	Audit AuditConfig `yaml:"audit" envconfig:"AUDIT"`

	// Logging configures diagnostic output.
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// PathsConfig locates the on-disk entitlement artifacts.
type PathsConfig struct {
	// License is the license document path. The file being absent is
	// the free tier, not a configuration error.
	License string `yaml:"license" envconfig:"LICENSE"`

	// Bundle is the sealed heuristics bundle path.
	Bundle string `yaml:"bundle" envconfig:"BUNDLE"`

	// Revocations is the revocation registry path.
	Revocations string `yaml:"revocations" envconfig:"REVOCATIONS"`
}

// AuditConfig configures the decision trail database.
type AuditConfig struct {
	// Enabled turns decision recording on. Default true.
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`

	// Path is the SQLite database path.
	Path string `yaml:"path" envconfig:"PATH"`
}

// LoggingConfig configures diagnostic output.
type LoggingConfig struct {
	// Level is the slog level name: debug, info, warn, or error.
	Level string `yaml:"level" envconfig:"LEVEL"`
}

// Default returns the out-of-the-box configuration: everything lives
// under ~/.config/costscope. The path fields reference the root
// symbolically so that overriding root (file, COSTSCOPE_ROOT, or
// flag) moves everything that was not overridden individually.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Root: filepath.Join(homeDir, ".config", "costscope"),
		Paths: PathsConfig{
			License:     "${COSTSCOPE_ROOT}/license.json",
			Bundle:      "${COSTSCOPE_ROOT}/heuristics.csbv",
			Revocations: "${COSTSCOPE_ROOT}/revocations.jsonc",
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    "${COSTSCOPE_ROOT}/audit.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load resolves configuration from the environment: the YAML file
// named by COSTSCOPE_CONFIG (when set) over the defaults, then
// COSTSCOPE_* variable overrides. Unlike the license artifacts,
// configuration itself is optional — no file and no variables yields
// the defaults.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("COSTSCOPE_CONFIG"))
}

// LoadFile is Load with an explicit file path, as given by a --config
// flag. An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	// Environment overrides the file. The struct carries no default
	// tags: defaults come from Default, and Process must only touch
	// fields whose variables are actually set.
	if err := envconfig.Process("costscope", cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"COSTSCOPE_ROOT": c.Root,
		"HOME":           os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["COSTSCOPE_ROOT"] = c.Root // Update for dependent paths.

	c.Paths.License = expandVars(c.Paths.License, vars)
	c.Paths.Bundle = expandVars(c.Paths.Bundle, vars)
	c.Paths.Revocations = expandVars(c.Paths.Revocations, vars)
	c.Audit.Path = expandVars(c.Audit.Path, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Root == "" {
		errs = append(errs, fmt.Errorf("root is required"))
	}
	if c.Paths.License == "" {
		errs = append(errs, fmt.Errorf("paths.license is required"))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !contains(levels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", levels))
	}

	if c.Audit.Enabled && c.Audit.Path == "" {
		errs = append(errs, fmt.Errorf("audit.path is required when audit is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the directories the tools write into: the data
// root and the audit database's parent.
func (c *Config) EnsurePaths() error {
	paths := []string{c.Root}
	if c.Audit.Enabled && c.Audit.Path != "" {
		paths = append(paths, filepath.Dir(c.Audit.Path))
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", path, err)
		}
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
