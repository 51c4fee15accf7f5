package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/GriffinCanCode/dirstore/internal/paths"
	"github.com/GriffinCanCode/dirstore/internal/snapshot"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Storage StorageConfig
	Logging LogConfig
	Cache   CacheConfig
	Metrics MetricsConfig
}

// StorageConfig holds store layout configuration.
type StorageConfig struct {
	Root     string `envconfig:"STORE_ROOT" default:"."`
	TempRoot string `envconfig:"STORE_TEMP_ROOT" default:".temp"`
	MaxDepth int    `envconfig:"SNAPSHOT_MAX_DEPTH" default:"50"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	File        string `envconfig:"LOG_FILE" default:""`
}

// CacheConfig holds file cache configuration.
type CacheConfig struct {
	TTL time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	Dir string        `envconfig:"CACHE_DIR" default:"cache"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"false"`
}

// Load loads configuration from environment variables. Each existing dotenv
// file in envFiles is applied first without overriding the environment;
// missing files are skipped.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Root:     paths.Root,
			TempRoot: paths.TempRoot,
			MaxDepth: snapshot.DefaultMaxDepth,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
			Dir: paths.Cache,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Storage.Root == "" {
		return errors.New("invalid config: STORE_ROOT cannot be empty")
	}
	if c.Storage.TempRoot == "" {
		return errors.New("invalid config: STORE_TEMP_ROOT cannot be empty")
	}
	if c.Storage.MaxDepth <= 0 {
		return fmt.Errorf("invalid config: SNAPSHOT_MAX_DEPTH must be positive, got %d", c.Storage.MaxDepth)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("invalid config: CACHE_TTL cannot be negative, got %s", c.Cache.TTL)
	}
	if err := paths.ValidateRelative(c.Cache.Dir); err != nil {
		return fmt.Errorf("invalid config: CACHE_DIR: %w", err)
	}
	return nil
}
