package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so tests see a clean environment
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"MISTRAL_API_KEY", "MISTRAL_BASE_URL",
		"OCRMD_OCR_MODEL", "OCRMD_CHAT_MODEL",
		"OCRMD_CONCURRENCY", "OCRMD_PROCESS_TIMEOUT",
		"OCRMD_MAX_FILE_SIZE", "OCRMD_HTTP_TIMEOUT",
		"OCRMD_URL_EXPIRY_HOURS", "OCRMD_CHUNK_TOKENS", "OCRMD_LOG_LEVEL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with a clean environment should succeed: %v", err)
	}

	if cfg.BaseURL != "https://api.mistral.ai" {
		t.Errorf("BaseURL = %q, want the hosted API default", cfg.BaseURL)
	}
	if cfg.OCRModel != "mistral-ocr-latest" {
		t.Errorf("OCRModel = %q, want mistral-ocr-latest", cfg.OCRModel)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.HTTPTimeout != 300*time.Second {
		t.Errorf("HTTPTimeout = %v, want 300s", cfg.HTTPTimeout)
	}
	if cfg.MaxFileSize != 52428800 {
		t.Errorf("MaxFileSize = %d, want 50MB", cfg.MaxFileSize)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MISTRAL_API_KEY", "test-key")
	t.Setenv("MISTRAL_BASE_URL", "http://localhost:9000")
	t.Setenv("OCRMD_CONCURRENCY", "8")
	t.Setenv("OCRMD_MAX_FILE_SIZE", "2048")
	t.Setenv("OCRMD_CHUNK_TOKENS", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", cfg.APIKey)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL = %q, want the override", cfg.BaseURL)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.MaxFileSize != 2048 {
		t.Errorf("MaxFileSize = %d, want 2048", cfg.MaxFileSize)
	}
	if cfg.ChunkTokens != 500 {
		t.Errorf("ChunkTokens = %d, want 500", cfg.ChunkTokens)
	}
}

func TestLoadIgnoresUnparseableNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCRMD_CONCURRENCY", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want the default when the value is not a number", cfg.Concurrency)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base URL", func(c *Config) { c.BaseURL = "" }},
		{"empty ocr model", func(c *Config) { c.OCRModel = "" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"excessive concurrency", func(c *Config) { c.Concurrency = 500 }},
		{"tiny max file size", func(c *Config) { c.MaxFileSize = 10 }},
		{"tiny chunk budget", func(c *Config) { c.ChunkTokens = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() = %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should reject the mutated config")
			}
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Error("RequireAPIKey should fail when the key is empty")
	}

	cfg.APIKey = "sk-123"
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey with a key set = %v", err)
	}
}
