// Package cache decorates repositories with a Redis read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"talent-hub-backend/internal/domain"
	"talent-hub-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	keySkills           = "catalog:skills"
	keyJobRoleLevels    = "catalog:job_role_levels"
	keyCertificateTypes = "catalog:certificate_types"
)

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type catalogCache struct {
	next  domain.CatalogRepository
	store Store
	ttl   time.Duration
}

// NewCatalogCache wraps next. Redis failures are logged and the call falls through to next.
func NewCatalogCache(next domain.CatalogRepository, store Store, ttl time.Duration) domain.CatalogRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &catalogCache{next: next, store: store, ttl: ttl}
}

func (c *catalogCache) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	return cached(ctx, c, keySkills, c.next.ListSkills)
}

func (c *catalogCache) ListJobRoleLevels(ctx context.Context) ([]domain.JobRoleLevel, error) {
	return cached(ctx, c, keyJobRoleLevels, c.next.ListJobRoleLevels)
}

func (c *catalogCache) ListCertificateTypes(ctx context.Context) ([]domain.CertificateType, error) {
	return cached(ctx, c, keyCertificateTypes, c.next.ListCertificateTypes)
}

func (c *catalogCache) CreateSkill(ctx context.Context, name string) (*domain.Skill, error) {
	s, err := c.next.CreateSkill(ctx, name)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, keySkills)
	return s, nil
}

func (c *catalogCache) CreateJobRoleLevel(ctx context.Context, position, level string) (*domain.JobRoleLevel, error) {
	j, err := c.next.CreateJobRoleLevel(ctx, position, level)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, keyJobRoleLevels)
	return j, nil
}

func (c *catalogCache) invalidate(ctx context.Context, key string) {
	if err := c.store.Del(ctx, key).Err(); err != nil {
		logger.Log.Warn("catalog cache invalidation failed", "key", key, "error", err)
	}
}

func cached[T any](ctx context.Context, c *catalogCache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	raw, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []T
		if jsonErr := json.Unmarshal(raw, &items); jsonErr == nil {
			return items, nil
		}
		logger.Log.Warn("catalog cache entry corrupt, reloading", "key", key)
	case !errors.Is(err, redis.Nil):
		logger.Log.Warn("catalog cache read failed", "key", key, "error", err)
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(items); err == nil {
		if err := c.store.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			logger.Log.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return items, nil
}
