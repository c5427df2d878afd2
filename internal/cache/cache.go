// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go provides a Valkey-backed key/value cache for serialized API
// responses and rendered post bodies. Every key lives under a common
// namespace so a whole family can be dropped with one prefix scan.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces every key this package writes.
	keyPrefix = "blogify:"

	// DefaultTTL is how long an entry stays cached when no TTL is given.
	DefaultTTL = 5 * time.Minute

	// TagsPrefix groups the cached tag list pages.
	TagsPrefix = "tags:"

	// postHTMLPrefix groups rendered post bodies.
	postHTMLPrefix = "post-html:"
)

// Cache stores byte values in Valkey with a fixed TTL. Read and write
// failures are logged and treated as misses: the cache never fails a
// request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache backed by the given Valkey client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached value for key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("cache hit", "key", key)
	return val, true
}

// Set stores val under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	if err := c.client.Set(ctx, keyPrefix+key, val, c.ttl).Err(); err != nil {
		slog.Warn("cache set error", "key", key, "error", err)
	}
}

// GetJSON decodes the cached value for key into dst. A value that no
// longer decodes is reported as a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("cache decode error", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON encodes v and stores it under key.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode error", "key", key, "error", err)
		return
	}
	c.Set(ctx, key, raw)
}

// InvalidatePrefix removes every entry whose key starts with prefix by
// scanning, since the set of cached pages is not known up front.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan %q: %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete %q: %w", prefix, err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	slog.Debug("cache prefix invalidated", "prefix", prefix, "deleted", deleted)
	return nil
}

// TagListKey returns the cache key for one page of the tag list.
func TagListKey(page int) string {
	return fmt.Sprintf("%slist:%d", TagsPrefix, page)
}

// PostHTMLPrefix returns the prefix shared by every rendering of a post.
func PostHTMLPrefix(id uuid.UUID) string {
	return postHTMLPrefix + id.String() + ":"
}

// PostHTMLKey returns the cache key for a post body rendered at a given
// revision. A new updated_at yields a new key, so edits never serve stale
// HTML even before the old entry expires.
func PostHTMLKey(id uuid.UUID, updatedAt time.Time) string {
	return fmt.Sprintf("%s%d", PostHTMLPrefix(id), updatedAt.UnixNano())
}
