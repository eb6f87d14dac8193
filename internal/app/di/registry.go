// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	licenseadapters "license_backend/internal/feature/license/adapters"
	"license_backend/internal/feature/license/usecase"
	"license_backend/internal/platform/cache"
)

// NewLicenseRepository creates a LicenseRepository backed by the database,
// wrapped with Redis caching when a client is available.
func NewLicenseRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.LicenseRepository {
	repo := licenseadapters.NewLicenseGorm(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingLicenseRepository(rdb, ttl, repo, "licenses")
}
