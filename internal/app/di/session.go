package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"license_backend/internal/platform/session"
)

// NewSessionStore creates a session.Store implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to an in-process store (single instance only).
func NewSessionStore(rdb *redis.Client, ttl time.Duration) session.Store {
	if rdb != nil {
		return session.NewRedisStore(rdb, "session", ttl)
	}
	return session.NewMemoryStore()
}
