// ABOUTME: Centralized configuration for urban-lens
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for urban-lens
type Config struct {
	// OpenAI-compatible model settings
	OpenAIKey      string
	BaseURL        string
	ChatModel      string
	VisionModel    string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Data settings
	ManifestPath      string
	ImageManifestPath string
	ImageDir          string

	// Serving settings
	Addr string
	TopK int

	// Charm caption cache settings
	CaptionCache bool
	CharmHost    string
	CharmDBName  string
	AutoSync     bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		BaseURL:           os.Getenv("OPENAI_BASE_URL"),
		ChatModel:         getEnv("LENS_CHAT_MODEL", "gpt-4o-mini"),
		VisionModel:       getEnv("LENS_VISION_MODEL", "gpt-4o-mini"),
		EmbeddingModel:    getEnv("LENS_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:           getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		ManifestPath:      getEnv("LENS_MANIFEST", "data/caption_manifest.json"),
		ImageManifestPath: getEnv("LENS_IMAGE_MANIFEST", "data/image_manifest.json"),
		ImageDir:          getEnv("LENS_IMAGE_DIR", "images"),
		Addr:              getEnv("LENS_ADDR", ":5000"),
		TopK:              getEnvInt("LENS_TOP_K", 3),
		CaptionCache:      getEnvBool("LENS_CAPTION_CACHE", false),
		CharmHost:         getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:       getEnv("CHARM_DB", "urban-lens"),
		AutoSync:          getEnvBool("CHARM_AUTO_SYNC", true),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.TopK < 1 {
		return fmt.Errorf("LENS_TOP_K must be at least 1, got %d", c.TopK)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
