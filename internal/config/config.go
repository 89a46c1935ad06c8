package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appDir = "billbook"

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Logging settings
	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlcipher" (default) or "postgres"
	Path   string `yaml:"path"`   // Path to the encrypted SQLite database
	DSN    string `yaml:"dsn"`    // Postgres connection string
}

type InvoiceConfig struct {
	OutputDir    string `yaml:"output_dir"`    // Directory for generated PDFs and CSV exports
	NumberPrefix string `yaml:"number_prefix"` // Invoice number prefix (e.g., "INV")
	NumberWidth  int    `yaml:"number_width"`  // Minimum digits after the prefix
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path; logs never go to the terminal
}

// Dir returns ~/.config/billbook
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", appDir)
}

// DefaultConfigPath returns ~/.config/billbook/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// UnlockFlagPath is where the PIN gate records that this machine is unlocked
func UnlockFlagPath() string {
	return filepath.Join(Dir(), "unlocked")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()

	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlcipher",
			Path:   filepath.Join(dir, "billbook.db"),
		},
		Invoice: InvoiceConfig{
			OutputDir:    filepath.Join(dir, "invoices"),
			NumberPrefix: "INV",
			NumberWidth:  5,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "billbook.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Missing keys keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Validate checks values that would otherwise fail later and less clearly
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlcipher":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlcipher driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database.driver %q (want sqlcipher or postgres)", c.Database.Driver)
	}

	if strings.ContainsAny(c.Invoice.NumberPrefix, " -") {
		return fmt.Errorf("invoice.number_prefix %q must not contain spaces or dashes", c.Invoice.NumberPrefix)
	}
	if c.Invoice.NumberWidth < 0 {
		return fmt.Errorf("invoice.number_width must not be negative")
	}

	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for database, invoices, logs)
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Invoice.OutputDir}
	if c.Database.Driver == "sqlcipher" {
		dirs = append(dirs, filepath.Dir(c.Database.Path))
	}
	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}
