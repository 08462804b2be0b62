package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	MarketData MarketDataConfig
	Optimizer  OptimizerConfig
	Jobs       JobsConfig
	Secrets    SecretsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// MarketDataConfig holds market data collaborator configuration.
type MarketDataConfig struct {
	BaseURL string
}

// OptimizerConfig holds optimization configuration.
type OptimizerConfig struct {
	// DefaultDeadline applies when a caller supplies no deadline.
	DefaultDeadline time.Duration
}

// JobsConfig holds background job configuration.
type JobsConfig struct {
	// PriceRefreshSpec is a cron expression; empty disables the job.
	PriceRefreshSpec string
}

// SecretsConfig holds encryption configuration.
type SecretsConfig struct {
	// FernetKey encrypts stored API keys; empty disables key management.
	FernetKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/optiq.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost"), ","),
		},
		MarketData: MarketDataConfig{
			BaseURL: getEnv("MARKET_DATA_BASE_URL", ""),
		},
		Optimizer: OptimizerConfig{
			DefaultDeadline: time.Duration(getEnvInt("OPTIMIZER_DEADLINE_SECONDS", 30)) * time.Second,
		},
		Jobs: JobsConfig{
			PriceRefreshSpec: getEnv("PRICE_REFRESH_CRON", "0 */6 * * *"),
		},
		Secrets: SecretsConfig{
			FernetKey: getEnv("FERNET_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
