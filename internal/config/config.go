/**
 * Configuration for the prescription OCR service
 *
 * Loads configuration from environment variables once at startup. The
 * resulting Config is passed explicitly to the vision client, the parser
 * client and the HTTP host; nothing below main reads the environment.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultVisionEndpoint   = "https://vision.googleapis.com/"
	DefaultBackendURL       = "http://localhost:8080"
	DefaultBackendTimeoutMs = 10000
	DefaultMaxImageSize     = 20 << 20 // 20MB, Vision's inline content limit
	DefaultPort             = "8000"
)

// Config holds service configuration
type Config struct {
	// Google Cloud Vision API key. Empty is accepted; the provider rejects the call.
	VisionAPIKey   string
	VisionEndpoint string

	// Backend parsing service
	BackendURL            string
	BackendParsingEnabled bool
	BackendTimeoutMs      int

	// Upper bound for an uploaded image, in bytes
	MaxImageSize int64

	Port   string
	AppEnv string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		VisionAPIKey:          getEnvOrDefault("GOOGLE_CLOUD_API_KEY", ""),
		VisionEndpoint:        getEnvOrDefault("VISION_ENDPOINT", DefaultVisionEndpoint),
		BackendURL:            strings.TrimRight(getEnvOrDefault("BACKEND_URL", DefaultBackendURL), "/"),
		BackendParsingEnabled: getEnvAsBoolOrDefault("ENABLE_BACKEND_PARSING", true),
		BackendTimeoutMs:      getEnvAsPositiveIntOrDefault("BACKEND_TIMEOUT", DefaultBackendTimeoutMs),
		MaxImageSize:          getEnvAsInt64OrDefault("MAX_IMAGE_SIZE", DefaultMaxImageSize),
		Port:                  getEnvOrDefault("PORT", DefaultPort),
		AppEnv:                getEnvOrDefault("APP_ENV", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.VisionEndpoint == "" {
		return fmt.Errorf("VISION_ENDPOINT must not be empty")
	}

	if c.BackendParsingEnabled && c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required when backend parsing is enabled")
	}

	if c.BackendTimeoutMs < 1 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive, got %d", c.BackendTimeoutMs)
	}

	if c.MaxImageSize < 1024 || c.MaxImageSize > 100<<20 { // 1KB to 100MB
		return fmt.Errorf("MAX_IMAGE_SIZE must be between 1KB and 100MB, got %d", c.MaxImageSize)
	}

	return nil
}

// BackendTimeout returns the relay deadline as a duration
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMs) * time.Millisecond
}

// IsProduction reports whether APP_ENV is "production"
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsPositiveIntOrDefault gets environment variable as a positive int or returns default
func getEnvAsPositiveIntOrDefault(key string, defaultValue int) int {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}

	return value
}

// getEnvAsInt64OrDefault gets environment variable as int64 or returns default
func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBoolOrDefault gets environment variable as bool or returns default.
// Unparsable values keep the default.
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
