package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// moduleListKey holds the JSON-encoded published catalog.
const moduleListKey = "modules:published"

// ModuleCache caches the published module listing as a single JSON value.
type ModuleCache struct {
	client *redis.Client
}

// NewModuleCache creates a ModuleCache wrapping the given Redis client.
func NewModuleCache(client *redis.Client) *ModuleCache {
	return &ModuleCache{client: client}
}

// Get returns the cached listing; ok is false on a miss.
func (c *ModuleCache) Get(ctx context.Context) ([]domain.Module, bool, error) {
	raw, err := c.client.Get(ctx, moduleListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("module cache get: %w", err)
	}

	var modules []domain.Module
	if err := json.Unmarshal(raw, &modules); err != nil {
		return nil, false, fmt.Errorf("module cache decode: %w", err)
	}
	return modules, true, nil
}

// Set stores the listing for ttl.
func (c *ModuleCache) Set(ctx context.Context, modules []domain.Module, ttl time.Duration) error {
	raw, err := json.Marshal(modules)
	if err != nil {
		return fmt.Errorf("module cache encode: %w", err)
	}
	return c.client.Set(ctx, moduleListKey, raw, ttl).Err()
}

// Invalidate drops the cached listing.
func (c *ModuleCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, moduleListKey).Err()
}
