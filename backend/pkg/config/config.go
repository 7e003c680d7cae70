package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	apperrors "campusnet/backend/pkg/errors"
)

// Store backends
const (
	StoreNeo4j  = "neo4j"
	StoreMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	// App
	Port            string
	Env             string
	ShutdownTimeout time.Duration

	// Store
	StoreBackend string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Circuit breaker around the store
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	// Auth
	JWTSecret string
	JWTIssuer string // optional, checked when set

	// HTTP
	RateLimitRPS   float64
	RateLimitBurst int
	FeedPageSize   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "5000"),
		Env:                getEnv("ENV", "development"),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		StoreBackend:       getEnv("STORE_BACKEND", StoreNeo4j),
		Neo4jURI:           getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:      getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:      getEnv("NEO4J_DATABASE", ""),
		BreakerMaxFailures: getEnvInt("BREAKER_MAX_FAILURES", 5),
		BreakerTimeout:     getEnvDuration("BREAKER_TIMEOUT", 30*time.Second),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", ""),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		FeedPageSize:       getEnvInt("FEED_PAGE_SIZE", 20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return apperrors.NewConfigMissingRequired("JWT_SECRET")
	}
	switch c.StoreBackend {
	case StoreNeo4j:
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
		}
	case StoreMemory:
	default:
		return apperrors.NewConfigValidationFailed("STORE_BACKEND", fmt.Sprintf("unknown backend %q", c.StoreBackend))
	}
	if c.RateLimitRPS <= 0 {
		return apperrors.NewConfigValidationFailed("RATE_LIMIT_RPS", "must be positive")
	}
	if c.RateLimitBurst < 1 {
		return apperrors.NewConfigValidationFailed("RATE_LIMIT_BURST", "must be at least 1")
	}
	if c.FeedPageSize < 1 {
		return apperrors.NewConfigValidationFailed("FEED_PAGE_SIZE", "must be at least 1")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
