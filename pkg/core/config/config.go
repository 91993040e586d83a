package config

import (
	"dcf_valuation/pkg/core/assumption"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is the optional YAML config file.
const DefaultPath = "config/dcf.yaml"

// Valid fundamentals sources.
const (
	SourceEDGAR    = "edgar"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	LogLevel     string        `yaml:"log_level"`
	LogPretty    bool          `yaml:"log_pretty"`
	Port         int           `yaml:"port"`
	DatabaseURL  string        `yaml:"database_url"`
	SECUserAgent string        `yaml:"sec_user_agent"`
	DataDir      string        `yaml:"data_dir"`  // snapshot files for the file source
	CacheDir     string        `yaml:"cache_dir"` // fetched-snapshot cache, empty disables
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	Source       string        `yaml:"source"` // edgar | file | postgres
	CORSOrigins  []string      `yaml:"cors_origins"`

	// Default macro assumptions, percent units.
	Assumptions assumption.Inputs `yaml:"assumptions"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Port:        8080,
		DataDir:     "data",
		CacheDir:    ".cache/fundamentals",
		CacheTTL:    24 * time.Hour,
		Source:      SourceEDGAR,
		CORSOrigins: []string{"*"},
		Assumptions: assumption.Defaults(),
	}
}

// Load reads configuration: defaults, then the YAML file at path (skipped
// when it does not exist), then environment variables. A .env file is
// loaded first if present.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.LogLevel = getEnv("DCF_LOG_LEVEL", cfg.LogLevel)
	cfg.LogPretty = getEnvAsBool("DCF_LOG_PRETTY", cfg.LogPretty)
	cfg.Port = getEnvAsInt("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SECUserAgent = getEnv("SEC_USER_AGENT", cfg.SECUserAgent)
	cfg.DataDir = getEnv("DCF_DATA_DIR", cfg.DataDir)
	cfg.CacheDir = getEnv("DCF_CACHE_DIR", cfg.CacheDir)
	cfg.Source = strings.ToLower(getEnv("DCF_SOURCE", cfg.Source))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceEDGAR, SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("unknown source %q (want edgar, file or postgres)", c.Source)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if err := c.Assumptions.Validate(); err != nil {
		return fmt.Errorf("invalid default assumptions: %w", err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
