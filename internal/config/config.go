// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for all databases, always absolute
	Port                int
	LogLevel            string
	DevMode             bool
	NewsAPIURL          string
	NewsAPIKey          string // Empty disables the sentiment probe
	SentimentTimeout    time.Duration
	MonitoringSchedules bool // Enables the cron-based re-analysis scheduler
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("VERITAS_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("VERITAS_PORT", 8080),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		NewsAPIURL:          getEnv("NEWS_API_URL", ""),
		NewsAPIKey:          getEnv("NEWS_API_KEY", ""),
		SentimentTimeout:    time.Duration(getEnvAsInt("SENTIMENT_TIMEOUT_SECONDS", 5)) * time.Second,
		MonitoringSchedules: getEnvAsBool("MONITORING_SCHEDULES", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.SentimentTimeout <= 0 {
		return fmt.Errorf("invalid sentiment timeout: %s", c.SentimentTimeout)
	}
	return nil
}

// StatementsDBPath returns the path of the statements database.
func (c *Config) StatementsDBPath() string {
	return filepath.Join(c.DataDir, "statements.db")
}

// AssessmentsDBPath returns the path of the assessments database.
func (c *Config) AssessmentsDBPath() string {
	return filepath.Join(c.DataDir, "assessments.db")
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
