// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"license_backend/internal/feature/license/domain/entity"
	"license_backend/internal/feature/license/usecase"
)

// CachingLicenseRepository decorates a LicenseRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository. Only successful lookups are cached;
// not-found results always hit the database so that newly registered
// licenses become visible immediately.
type CachingLicenseRepository struct {
	inner     usecase.LicenseRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingLicenseRepository decorates a LicenseRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "licenses".
func NewCachingLicenseRepository(rdb *redis.Client, ttl time.Duration, inner usecase.LicenseRepository, namespace string) *CachingLicenseRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "licenses"
	}
	return &CachingLicenseRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindMatch retrieves a matching license, checking cache first then falling
// back to the database. ErrLicenseNotFound is never cached.
func (c *CachingLicenseRepository) FindMatch(ctx context.Context, dlNumber, name, validTill string) (*entity.License, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindMatch(ctx, dlNumber, name, validTill)
	}

	key := c.matchKey(dlNumber, name, validTill)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.License
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindMatch(ctx, dlNumber, name, validTill)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// Create registers a license and invalidates related cache entries.
func (c *CachingLicenseRepository) Create(ctx context.Context, lic *entity.License) error {
	// First persist to the underlying repository
	if err := c.inner.Create(ctx, lic); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}

	// Invalidate match entries for this number and the list entry.
	// Best effort: don't fail the write if cache deletion fails.
	_ = c.deleteByPattern(ctx, c.matchKeyPrefix(lic.DLNumber)+"*")
	_ = c.rdb.Del(ctx, c.listKey()).Err()
	return nil
}

// List retrieves all licenses, checking cache first then falling back to the database.
func (c *CachingLicenseRepository) List(ctx context.Context) ([]entity.License, error) {
	if c.rdb == nil {
		return c.inner.List(ctx)
	}

	key := c.listKey()

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.License
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// matchKey generates a cache key for a specific match query.
func (c *CachingLicenseRepository) matchKey(dlNumber, name, validTill string) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		c.namespace,
		safe(dlNumber),
		safe(name),
		safe(validTill),
	)
}

// matchKeyPrefix generates a prefix for invalidating match entries of one number.
func (c *CachingLicenseRepository) matchKeyPrefix(dlNumber string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(dlNumber))
}

// listKey generates the cache key for the full listing.
func (c *CachingLicenseRepository) listKey() string {
	return c.namespace + ":list"
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingLicenseRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

// compile-time interface check
var _ usecase.LicenseRepository = (*CachingLicenseRepository)(nil)
