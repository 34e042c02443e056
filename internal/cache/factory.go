package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Backend string
	Prefix  string

	// CleanupInterval only applies to the memory backend.
	CleanupInterval time.Duration
}

// NewStore picks the backend by name: "redis" needs a connected client,
// anything else falls back to the in-memory store.
func NewStore(cfg Config, redisClient *redis.Client) Store {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		})
	default:
		return NewMemoryStore(cfg.CleanupInterval)
	}
}
