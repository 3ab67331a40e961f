package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
	Environment string
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	// QueryTimeout bounds every single store operation; exceeding it maps
	// to a store-unavailable error.
	QueryTimeout time.Duration
}

type RateLimitConfig struct {
	PublicPerMinute int
	WritePerMinute  int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			QueryTimeout:   time.Duration(getEnvInt("DATABASE_QUERY_TIMEOUT_MS", 5000)) * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: getEnvInt("RATE_LIMIT_PUBLIC", 120),
			WritePerMinute:  getEnvInt("RATE_LIMIT_WRITE", 60),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
