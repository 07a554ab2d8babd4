package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Inkwell.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig    `yaml:"cors"`
}

// TimeoutConfig contains HTTP timeout settings, in seconds.
type TimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
//
// Inkwell serves exactly one browser frontend, so a single origin is
// configured rather than a list. Credentials are always allowed for
// that origin.
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: INKWELL_SECTION_KEY
// For example: INKWELL_DATABASE_PATH, INKWELL_SERVER_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: TimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			CORS: CORSConfig{
				AllowedOrigin: "http://localhost:5346",
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/inkwell.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: INKWELL_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INKWELL_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("INKWELL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("INKWELL_CORS_ALLOWED_ORIGIN"); v != "" {
		cfg.Server.CORS.AllowedOrigin = v
	}
	if v := os.Getenv("INKWELL_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("INKWELL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}

	if c.Server.CORS.AllowedOrigin != "" {
		u, err := url.Parse(c.Server.CORS.AllowedOrigin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("server.cors.allowed_origin must be an absolute URL, got %q", c.Server.CORS.AllowedOrigin))
		}
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, "database.busy_timeout must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		errs = append(errs, fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
