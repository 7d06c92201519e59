// Package config provides configuration for the application
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds MongoDB connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds access token settings
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// RateLimitConfig holds per-IP request limits
type RateLimitConfig struct {
	RequestsPerMinute int
	LoginPerMinute    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration, every value has a default
	cfg.Database.User = getEnv("MONGO_USER", "root")
	cfg.Database.Password = getEnv("MONGO_PASS", "example")
	cfg.Database.Host = getEnv("MONGO_HOST", "mongo")
	cfg.Database.DBName = getEnv("MONGO_DB", "iot")

	dbPort, err := strconv.Atoi(getEnv("MONGO_PORT", "27017"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONGO_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	// Server configuration
	serverPort, err := strconv.Atoi(getEnv("SERVER_PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	accessExpiry, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY: %w", err)
	}
	if accessExpiry <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TOKEN_EXPIRY must be positive")
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	// Rate limit configuration
	cfg.RateLimit.RequestsPerMinute, err = strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}
	cfg.RateLimit.LoginPerMinute, err = strconv.Atoi(getEnv("LOGIN_RATE_LIMIT_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT_PER_MINUTE: %w", err)
	}

	return cfg, nil
}

// URI returns the MongoDB connection string.
//
// Credentials are authenticated against the "admin" database, the application data lives in DBName.
func (c *Config) URI() string {
	u := url.URL{
		Scheme: "mongodb",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:   "/admin",
	}
	return u.String()
}

// getEnv returns the value of the environment variable or fallback when it is unset or empty
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins splits a comma-separated origin list, defaulting to "*"
func parseOrigins(raw string) []string {
	if raw == "" {
		// Default to allow all origins if not specified (for development)
		return []string{"*"}
	}

	origins := strings.Split(raw, ",")
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed = append(allowed, origin)
		}
	}
	// If no valid origins found, default to allow all
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}
