package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no state exists for a session ID.
var ErrNotFound = errors.New("session not found")

// Store abstracts the persistence of journey state.
type Store interface {
	// Get retrieves the state for a session ID.
	// Returns ErrNotFound when the session has no state yet.
	Get(ctx context.Context, id string) (*State, error)

	// Save persists the state for a session ID, resetting its TTL.
	Save(ctx context.Context, id string, st *State) error

	// Delete removes the state for a session ID.
	Delete(ctx context.Context, id string) error
}

// RedisStore implements Store using Redis with a per-session TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisStore implements Store (compile-time check).
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new RedisStore instance.
// If ttl is 0, it defaults to 30 minutes.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// key returns the Redis key for a session ID.
func (r *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Get retrieves the state for a session ID.
func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &st, nil
}

// Save persists the state and refreshes the session TTL.
func (r *RedisStore) Save(ctx context.Context, id string, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	return r.client.Set(ctx, r.key(id), data, r.ttl).Err()
}

// Delete removes the state for a session ID.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}
