package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/metrics"
)

const keyPrefix = "parking:templates"

// TemplateCache stores generated template sets in Redis. Generation is
// deterministic per request, so entries never need invalidation beyond the TTL.
type TemplateCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   *zerolog.Logger
}

// NewTemplateCache returns a cache; a nil client or non-positive ttl disables it.
func NewTemplateCache(client *redis.Client, ttl time.Duration, log *zerolog.Logger) *TemplateCache {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &TemplateCache{redis: client, ttl: ttl, log: log}
}

func (c *TemplateCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

// Key renders the cache key for a normalized request.
func Key(req layout.Request) string {
	return fmt.Sprintf("%s:%d:%d:%s", keyPrefix, req.CarSlots, req.BikeSlots,
		strconv.FormatFloat(req.PricePerHour, 'f', -1, 64))
}

// Get returns cached layouts for req, reporting whether there was a hit.
func (c *TemplateCache) Get(ctx context.Context, req layout.Request) ([]*domain.Layout, bool) {
	if !c.enabled() {
		return nil, false
	}
	var out []*domain.Layout
	if !c.readCache(ctx, Key(req), &out) {
		metrics.IncTemplateCache("miss")
		return nil, false
	}
	metrics.IncTemplateCache("hit")
	return out, true
}

func (c *TemplateCache) Set(ctx context.Context, req layout.Request, layouts []*domain.Layout) {
	if !c.enabled() {
		return
	}
	c.writeCache(ctx, Key(req), layouts)
}

func (c *TemplateCache) readCache(ctx context.Context, key string, out any) bool {
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Template cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Template cache entry is corrupt")
		return false
	}
	return true
}

func (c *TemplateCache) writeCache(ctx context.Context, key string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Template cache write failed")
	}
}
