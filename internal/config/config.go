package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	DatabaseURL        string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	MigrateOnStart     bool
	ServerPort         string
	BaseURL            string
	FrontendURL        string
	EnableHSTS         bool
	RedisURL           string
	ServerDebugMode    bool
	LogFormat          string
	OTELEnabled        bool
	OTELEndpoint       string
	ClerkWebhookSecret string
	ClerkIssuer        string
	ClerkJWKSURL       string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 10),
		MigrateOnStart:     getEnvBool("MIGRATE_ON_START", true),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", false),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		OTELEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ClerkWebhookSecret: strings.TrimSpace(getEnv("CLERK_WEBHOOK_SECRET", "")),
		ClerkIssuer:        strings.TrimSpace(getEnv("CLERK_ISSUER", "")),
		ClerkJWKSURL:       strings.TrimSpace(getEnv("CLERK_JWKS_URL", "")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.ClerkWebhookSecret == "" {
		return nil, fmt.Errorf("CLERK_WEBHOOK_SECRET is required (Clerk Dashboard -> Webhooks -> signing secret)")
	}

	return cfg, nil
}

// SessionAuthEnabled reports whether bearer session verification is configured.
func (c *Config) SessionAuthEnabled() bool {
	return c.ClerkIssuer != "" && c.ClerkJWKSURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
