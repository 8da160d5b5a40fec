// Package cache holds the redis-backed read cache for the polling canvas
// endpoints. The UI refreshes every few seconds and tolerates staleness up
// to the poll interval, so the cache uses a short TTL and is invalidated on
// every mutation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/logger"
)

// KeyRegions holds the serialized list of all live regions.
const KeyRegions = "tessera:regions"

type RedisCache struct {
	logger *logger.Logger

	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache creates a canvas cache on top of an existing redis client.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration, logger *logger.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// GetRegions returns the cached canvas snapshot, or ok=false on miss or any
// redis failure. Cache trouble must never fail a read; the caller falls back
// to the repository.
func (c *RedisCache) GetRegions(ctx context.Context) ([]*models.Region, bool) {
	data, err := c.client.Get(ctx, KeyRegions).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read canvas cache ", "error ", err)
		}
		return nil, false
	}

	var regions []*models.Region
	if err := json.Unmarshal(data, &regions); err != nil {
		c.logger.Warn("Failed to decode canvas cache ", "error ", err)
		return nil, false
	}

	return regions, true
}

func (c *RedisCache) SetRegions(ctx context.Context, regions []*models.Region) {
	data, err := json.Marshal(regions)
	if err != nil {
		c.logger.Warn("Failed to encode canvas cache ", "error ", err)
		return
	}
	if err := c.client.Set(ctx, KeyRegions, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write canvas cache ", "error ", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, KeyRegions).Err(); err != nil {
		c.logger.Warn("Failed to invalidate canvas cache ", "error ", err)
	}
}
