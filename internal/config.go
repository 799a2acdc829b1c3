package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Source      VaultConfig       `yaml:"source"`
	Destination VaultConfig       `yaml:"destination"`
	Logs        LogsConfig        `yaml:"logs"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Destination.Validate(); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	return c.Logs.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel string `yaml:"log_level"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required,
			validation.In("debug", "info", "warn", "error")),
	)
}

// Level maps the configured name to a slog level.
func (c *ApplicationConfig) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// VaultConfig holds the path to a Markdown vault directory. Name is the
// vault name used in back-link addresses; it defaults to the directory
// name.
type VaultConfig struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// VaultName returns the configured name, falling back to the directory
// name.
func (c *VaultConfig) VaultName() string {
	if c.Name != "" {
		return c.Name
	}
	return filepath.Base(filepath.Clean(c.Path))
}

// LogsConfig holds the paths of the two log files. The info log receives
// everything at the configured level; the error log receives warnings and
// errors only. Empty paths disable file logging.
type LogsConfig struct {
	InfoPath  string `yaml:"info_path"`
	ErrorPath string `yaml:"error_path"`
}

// Validate validates the logging configuration. Both paths must be set
// together or not at all.
func (c *LogsConfig) Validate() error {
	if (c.InfoPath == "") != (c.ErrorPath == "") {
		return fmt.Errorf("logs: info_path and error_path must be set together")
	}
	return nil
}

// Enabled reports whether file logging is configured.
func (c *LogsConfig) Enabled() bool {
	return c.InfoPath != ""
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: "info",
		},
		Source: VaultConfig{
			Path: "./vault",
		},
		Destination: VaultConfig{
			Path: "./quotes",
		},
		Logs: LogsConfig{
			InfoPath:  "logs/info.log",
			ErrorPath: "logs/error.log",
		},
	}
}
