/**
 * Configuration for ocrmd
 *
 * Loads configuration from environment variables, optionally seeded from a
 * .env file by the CLI entry point. Flags override individual fields after
 * loading.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds CLI configuration
type Config struct {
	// Mistral API
	APIKey  string
	BaseURL string

	// Model selection
	OCRModel  string
	ChatModel string

	// Batch processing
	Concurrency    int
	ProcessTimeout time.Duration

	// Input limits
	MaxFileSize int64

	// HTTP client
	HTTPTimeout time.Duration

	// Signed URL lifetime for uploaded documents, in hours
	URLExpiryHours int

	// Translation chunking budget, in tokens
	ChunkTokens int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		APIKey:         getEnvOrDefault("MISTRAL_API_KEY", ""),
		BaseURL:        getEnvOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai"),
		OCRModel:       getEnvOrDefault("OCRMD_OCR_MODEL", "mistral-ocr-latest"),
		ChatModel:      getEnvOrDefault("OCRMD_CHAT_MODEL", "mistral-small-latest"),
		Concurrency:    getEnvAsIntOrDefault("OCRMD_CONCURRENCY", 4),
		ProcessTimeout: time.Duration(getEnvAsIntOrDefault("OCRMD_PROCESS_TIMEOUT", 600)) * time.Second,
		MaxFileSize:    getEnvAsInt64OrDefault("OCRMD_MAX_FILE_SIZE", 52428800), // 50MB, the API's document limit
		HTTPTimeout:    time.Duration(getEnvAsIntOrDefault("OCRMD_HTTP_TIMEOUT", 300)) * time.Second,
		URLExpiryHours: getEnvAsIntOrDefault("OCRMD_URL_EXPIRY_HOURS", 24),
		ChunkTokens:    getEnvAsIntOrDefault("OCRMD_CHUNK_TOKENS", 3000),
		LogLevel:       getEnvOrDefault("OCRMD_LOG_LEVEL", "info"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("MISTRAL_BASE_URL must not be empty")
	}

	if c.OCRModel == "" {
		return fmt.Errorf("OCRMD_OCR_MODEL must not be empty")
	}

	if c.ChatModel == "" {
		return fmt.Errorf("OCRMD_CHAT_MODEL must not be empty")
	}

	if c.Concurrency < 1 || c.Concurrency > 64 {
		return fmt.Errorf("OCRMD_CONCURRENCY must be between 1 and 64, got %d", c.Concurrency)
	}

	if c.MaxFileSize < 1024 || c.MaxFileSize > 1073741824 { // 1KB to 1GB
		return fmt.Errorf("OCRMD_MAX_FILE_SIZE must be between 1KB and 1GB, got %d", c.MaxFileSize)
	}

	if c.ChunkTokens < 100 || c.ChunkTokens > 100000 {
		return fmt.Errorf("OCRMD_CHUNK_TOKENS must be between 100 and 100000, got %d", c.ChunkTokens)
	}

	return nil
}

// RequireAPIKey checks that an API key is present; commands that talk to the
// API call this before building clients
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("MISTRAL_API_KEY is not set (use --api-key, the environment, or a .env file)")
	}
	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
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
