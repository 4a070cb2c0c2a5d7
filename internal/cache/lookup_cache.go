package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/pkg/praktiker"
)

// lookupSource is the upstream the cache falls back to, normally the
// praktiker client.
type lookupSource interface {
	SearchByBarcode(ctx context.Context, barcode string) (*praktiker.Product, error)
}

// LookupCache decorates a lookup source with a Redis cache keyed by
// barcode. Only successful lookups are cached; misses always go back to
// the source so newly listed products are picked up promptly.
type LookupCache struct {
	redis  *RedisClient
	source lookupSource
	ttl    time.Duration
}

// NewLookupCache creates a LookupCache in front of source.
func NewLookupCache(redis *RedisClient, source lookupSource, ttl time.Duration) *LookupCache {
	return &LookupCache{redis: redis, source: source, ttl: ttl}
}

func (c *LookupCache) key(barcode string) string {
	return fmt.Sprintf("lookup:barcode:%s", barcode)
}

// SearchByBarcode serves the descriptor from Redis when present, otherwise
// asks the source and stores the result. Cache failures are logged and
// never block the lookup.
func (c *LookupCache) SearchByBarcode(ctx context.Context, barcode string) (*praktiker.Product, error) {
	key := c.key(barcode)

	raw, err := c.redis.Get(ctx, key)
	if err == nil {
		var p praktiker.Product
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			log.Debug().Str("barcode", barcode).Msg("Lookup served from cache")
			return &p, nil
		}
		// Corrupt entry; drop it and fall through to the source.
		_ = c.redis.Delete(ctx, key)
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("barcode", barcode).Msg("Lookup cache read failed")
	}

	p, err := c.source.SearchByBarcode(ctx, barcode)
	if err != nil || p == nil {
		return p, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.redis.Set(ctx, key, string(data), c.ttl); err != nil {
			log.Warn().Err(err).Str("barcode", barcode).Msg("Lookup cache write failed")
		}
	}
	return p, nil
}
