// Package config loads the YAML configuration file.
package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// AdminConfig holds the credentials guarding the admin surface. The password
// is stored as a bcrypt hash, never in the clear.
type AdminConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// BaseURL is the public site URL used in JSON-LD and feed links.
	BaseURL string `yaml:"base_url"`

	// GenerateCron is the cron schedule for the nightly series generation
	// and search reindex run.
	GenerateCron string `yaml:"generate_cron"`

	// ExportDir is where the static weekly listing files are written.
	ExportDir string `yaml:"export_dir"`

	// Admin, if non-nil, enables the admin API and websocket endpoints.
	Admin *AdminConfig `yaml:"admin,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		DBPath:       "showcal.db",
		LogLevel:     "info",
		BaseURL:      "http://localhost:8080",
		GenerateCron: "15 5 * * *",
		ExportDir:    "public/data",
	}
}

// Normalize fills in missing/zero values with the defaults so that partially
// filled config files still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.DBPath == "" {
		c.DBPath = "showcal.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.GenerateCron == "" {
		c.GenerateCron = "15 5 * * *"
	}
	if c.ExportDir == "" {
		c.ExportDir = "public/data"
	}
}

// Load loads configuration from the given YAML path. A missing file yields
// the defaults so a fresh checkout runs without any setup.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}
