// Package config loads application configuration from environment variables
// with defaults and validation. A .env file in the working directory is
// honored in development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the service.
type Config struct {
	// Server
	Port           string        // PORT, just the number
	Env            string        // ENV: dev|production
	RequestTimeout time.Duration // REQUEST_TIMEOUT_SECONDS

	// Cache
	CacheBackend   string        // CACHE_BACKEND: memory|redis
	RedisAddr      string        // REDIS_ADDR
	CachePrefix    string        // CACHE_PREFIX
	VisionCacheTTL time.Duration // VISION_CACHE_TTL (seconds)
	RecipeCacheTTL time.Duration // RECIPES_CACHE_TTL (seconds)

	// OpenAI
	OpenAIAPIKey    string        // OPENAI_API_KEY (required)
	OpenAIBaseURL   string        // OPENAI_BASE_URL
	VisionModel     string        // OPENAI_VISION_MODEL
	RecipesModel    string        // OPENAI_RECIPES_MODEL
	UpstreamTimeout time.Duration // OPENAI_TIMEOUT_SECONDS

	// Uploads
	MaxImageBytes int64 // MAX_IMAGE_BYTES
}

// Load reads the environment (plus an optional .env file) and validates the
// result. A missing .env is fine; a bad value is not.
func Load() (*Config, error) {
	// Best-effort: deployments set real env vars, dev uses .env.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		Env:            getenv("ENV", "production"),
		RequestTimeout: getenvSeconds("REQUEST_TIMEOUT_SECONDS", 90),

		CacheBackend:   getenv("CACHE_BACKEND", "memory"),
		RedisAddr:      getenv("REDIS_ADDR", "127.0.0.1:6379"),
		CachePrefix:    getenv("CACHE_PREFIX", "cookapi"),
		VisionCacheTTL: getenvSeconds("VISION_CACHE_TTL", 36000),
		RecipeCacheTTL: getenvSeconds("RECIPES_CACHE_TTL", 36000),

		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   getenv("OPENAI_BASE_URL", "https://api.openai.com"),
		VisionModel:     getenv("OPENAI_VISION_MODEL", "gpt-4o-mini"),
		RecipesModel:    getenv("OPENAI_RECIPES_MODEL", "gpt-4o-mini"),
		UpstreamTimeout: getenvSeconds("OPENAI_TIMEOUT_SECONDS", 60),

		MaxImageBytes: getenvInt64("MAX_IMAGE_BYTES", 2*1024*1024),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}
	if c.CacheBackend == "redis" && c.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required when CACHE_BACKEND=redis")
	}
	if c.MaxImageBytes <= 0 {
		return errors.New("MAX_IMAGE_BYTES must be positive")
	}
	if c.VisionCacheTTL <= 0 || c.RecipeCacheTTL <= 0 {
		return errors.New("cache TTLs must be positive")
	}
	return nil
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvSeconds parses an integer number of seconds; bad or missing values
// fall back to the default.
func getenvSeconds(key string, defSeconds int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defSeconds) * time.Second
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}
