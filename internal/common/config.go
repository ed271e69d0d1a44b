// Package common provides shared configuration and logging for MarketLens
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for MarketLens
type Config struct {
	Environment string        `toml:"environment"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Charts      ChartsConfig  `toml:"charts"`
	Logging     LoggingConfig `toml:"logging"`
}

// StorageConfig holds path configuration for the two storage areas.
type StorageConfig struct {
	Market   AreaConfig `toml:"market"`   // Cached market data (file-based JSON)
	Analysis AreaConfig `toml:"analysis"` // Analysis reports + job runs (BadgerHold)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ChartsConfig holds chart rendering configuration.
type ChartsConfig struct {
	OutputDir string `toml:"output_dir"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Market:   AreaConfig{Path: "data/market"},
			Analysis: AreaConfig{Path: "data/analysis"},
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Charts: ChartsConfig{
			OutputDir: "data/charts",
			Width:     1280,
			Height:    720,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MARKETLENS_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("MARKETLENS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("MARKETLENS_DATA_PATH"); path != "" {
		config.Storage.Market.Path = filepath.Join(path, "market")
		config.Storage.Analysis.Path = filepath.Join(path, "analysis")
		config.Charts.OutputDir = filepath.Join(path, "charts")
	}

	if key := os.Getenv("MARKETLENS_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	} else if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey returns the EODHD API key from the environment or the config
// file, preferring the environment.
func (c *Config) ResolveAPIKey() (string, error) {
	for _, name := range []string{"MARKETLENS_EODHD_API_KEY", "EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	if c.Clients.EODHD.APIKey != "" {
		return c.Clients.EODHD.APIKey, nil
	}
	return "", fmt.Errorf("EODHD API key not found in environment or config")
}
