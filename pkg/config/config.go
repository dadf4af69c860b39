// Package config manages the per-user sriracha configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// ErrNotConfigured is returned when the configuration file does not exist or
// lacks a required value. Callers should direct the user to `sriracha
// configure`.
var ErrNotConfigured = errors.New("not configured; run \"sriracha configure\"")

// Config holds the user-specific configuration.
type Config struct {
	// LocalSyncDir is the local mirror directory for S3 downloads.
	LocalSyncDir string `yaml:"local_sync_dir,omitempty"`
	// LogDir is the directory for per-project log files.
	LogDir string `yaml:"log_dir,omitempty"`
	// CircleCIAPIToken is the personal CircleCI API token.
	CircleCIAPIToken string `yaml:"circleci_api_token,omitempty"`
}

// Provider defines the interface for configuration sources.
type Provider interface {
	Load() (*Config, error)
	Save(*Config) error
	Path() string
}

// YAMLProvider implements Provider for a YAML configuration file.
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a provider backed by the given file.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{filename: filename}
}

// DefaultPath returns the default configuration file location,
// ~/.sriracha/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("can't determine home directory: %w", err)
	}
	return filepath.Join(home, ".sriracha", "config.yaml"), nil
}

// Path returns the backing file path.
func (y *YAMLProvider) Path() string {
	return y.filename
}

// Load reads and parses the configuration file. A missing file yields
// ErrNotConfigured.
func (y *YAMLProvider) Load() (*Config, error) {
	data, err := os.ReadFile(y.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %s: %w", y.filename, ErrNotConfigured)
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("can't parse config file %s: %w", y.filename, err)
	}

	cfg.LocalSyncDir = ExpandHome(cfg.LocalSyncDir)
	cfg.LogDir = ExpandHome(cfg.LogDir)
	return &cfg, nil
}

// Save writes the configuration, creating the parent directory as needed.
// The file is readable and writable by the owner only since it may contain
// an API token.
func (y *YAMLProvider) Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(y.filename), 0o755); err != nil {
		return fmt.Errorf("can't create config directory: %w", err)
	}
	if err := os.WriteFile(y.filename, data, 0o600); err != nil {
		return err
	}
	// WriteFile doesn't change the mode of a pre-existing file.
	return os.Chmod(y.filename, 0o600)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
