package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Text generation API (OpenAI-compatible chat completions)
	TextAPIKey  string
	TextBaseURL string
	TextModel   string

	// Image generation API (Gemini-style generateContent)
	ImageAPIKey  string
	ImageBaseURL string
	ImageModel   string

	// Storage
	DBPath string

	// Editing sessions
	SessionTTL time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Generation defaults
	DefaultImageCount int
	DefaultLanguage   string
	DefaultCountry    string

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CONTENTFORGE_API_KEY"),

		TextAPIKey:  os.Getenv("TEXT_API_KEY"),
		TextBaseURL: envOr("TEXT_API_URL", "https://api.openai.com/v1"),
		TextModel:   envOr("TEXT_MODEL", "gpt-4o"),

		ImageAPIKey:  os.Getenv("IMAGE_API_KEY"),
		ImageBaseURL: envOr("IMAGE_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ImageModel:   envOr("IMAGE_MODEL", "gemini-2.0-flash-exp"),

		DBPath: envOr("DB_PATH", "data/contentforge.db"),

		SessionTTL: envDuration("SESSION_TTL", 2*time.Hour),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		DefaultImageCount: envInt("DEFAULT_IMAGE_COUNT", 3),
		DefaultLanguage:   envOr("DEFAULT_LANGUAGE", "sk"),
		DefaultCountry:    envOr("DEFAULT_COUNTRY", "sk"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.DefaultImageCount <= 0 {
		cfg.DefaultImageCount = 3
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CONTENTFORGE_API_KEY is required")
	}
	if c.TextAPIKey == "" {
		return fmt.Errorf("TEXT_API_KEY is required")
	}
	if c.ImageAPIKey == "" {
		return fmt.Errorf("IMAGE_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
