package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests from the .env file or environment variables.
// If TEST_MONGO_HOST is not set, an empty Config is returned and integration tests are skipped.
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	dbHost := os.Getenv("TEST_MONGO_HOST")
	if dbHost == "" {
		return cfg, nil
	}
	cfg.Database.Host = dbHost

	dbPort, err := strconv.Atoi(getEnv("TEST_MONGO_PORT", "27017"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_MONGO_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	cfg.Database.User = getEnv("TEST_MONGO_USER", "root")
	cfg.Database.Password = getEnv("TEST_MONGO_PASS", "example")
	cfg.Database.DBName = getEnv("TEST_MONGO_DB", "iot_test")

	cfg.JWT.Secret = getEnv("TEST_JWT_SECRET", "integration-test-secret")
	cfg.JWT.AccessTokenExpiry = 30 * time.Minute

	return cfg, nil
}
