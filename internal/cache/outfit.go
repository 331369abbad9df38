// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// outfit.go caches assembled outfit aggregates (parent, categories and
// items) as JSON so repeated reads skip the four queries that build one.
// Entries are dropped on every write to the aggregate.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"outfitly/internal/models"
)

const (
	// outfitKeyPrefix is the Valkey key prefix for cached aggregates.
	outfitKeyPrefix = "outfit:"

	// holdKeyPrefix marks recently invalidated aggregates. Set refuses to
	// write while the mark exists.
	holdKeyPrefix = "outfit-hold:"

	// DefaultOutfitTTL is how long an assembled aggregate stays cached.
	DefaultOutfitTTL = 5 * time.Minute

	// DefaultInvalidationHold bounds how long a read that started before
	// a write may take and still be kept out of the cache.
	DefaultInvalidationHold = 10 * time.Second
)

// setUnlessHeld writes KEYS[1] unless KEYS[2] exists. Returns 1 when
// written.
var setUnlessHeld = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// OutfitCache manages aggregate caching in Valkey. Errors are logged and
// reported as misses; the cache never fails a request.
type OutfitCache struct {
	client *redis.Client
	ttl    time.Duration
	hold   time.Duration
}

// NewOutfitCache creates a new aggregate cache backed by the given Valkey client.
func NewOutfitCache(client *redis.Client, ttl time.Duration) *OutfitCache {
	if ttl == 0 {
		ttl = DefaultOutfitTTL
	}
	return &OutfitCache{client: client, ttl: ttl, hold: DefaultInvalidationHold}
}

// OutfitKey returns the cache key for an outfit id.
func OutfitKey(id uuid.UUID) string {
	return outfitKeyPrefix + id.String()
}

func holdKey(id uuid.UUID) string {
	return holdKeyPrefix + id.String()
}

// Get returns the cached aggregate for id, or false on miss.
func (c *OutfitCache) Get(ctx context.Context, id uuid.UUID) (*models.Outfit, bool) {
	val, err := c.client.Get(ctx, OutfitKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("outfit cache get error", "outfit_id", id, "error", err)
		return nil, false
	}

	var o models.Outfit
	if err := json.Unmarshal(val, &o); err != nil {
		slog.Warn("outfit cache decode error", "outfit_id", id, "error", err)
		c.Invalidate(ctx, id)
		return nil, false
	}
	slog.Debug("outfit cache hit", "outfit_id", id)
	return &o, true
}

// Set stores an assembled aggregate with the configured TTL. It is a
// no-op while the aggregate is held by a recent Invalidate, so a read
// that loaded the row before a concurrent write cannot cache the old
// state.
func (c *OutfitCache) Set(ctx context.Context, o *models.Outfit) {
	data, err := json.Marshal(o)
	if err != nil {
		slog.Warn("outfit cache encode error", "outfit_id", o.ID, "error", err)
		return
	}
	keys := []string{OutfitKey(o.ID), holdKey(o.ID)}
	written, err := setUnlessHeld.Run(ctx, c.client, keys, data, c.ttl.Milliseconds()).Int()
	if err != nil {
		slog.Warn("outfit cache set error", "outfit_id", o.ID, "error", err)
		return
	}
	if written == 0 {
		slog.Debug("outfit cache set skipped, recently invalidated", "outfit_id", o.ID)
	}
}

// Invalidate removes a single aggregate from the cache and holds it out
// of the cache for the invalidation hold.
func (c *OutfitCache) Invalidate(ctx context.Context, id uuid.UUID) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, OutfitKey(id))
		pipe.Set(ctx, holdKey(id), 1, c.hold)
		return nil
	})
	if err != nil {
		slog.Warn("outfit cache invalidate error", "outfit_id", id, "error", err)
		return
	}
	slog.Debug("outfit cache invalidated", "outfit_id", id)
}

// InvalidateAll removes all cached aggregates by scanning for the prefix.
// Run after migrations, since a schema change can alter the cached shape.
func (c *OutfitCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, outfitKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("outfit cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("outfit cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("outfit cache fully cleared", "deleted", deleted)
	}
}
