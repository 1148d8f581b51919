package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"marketplace-service/pkg/config"
)

// Cache keys for the public slug listings
const (
	KeyProductSlugs  = "slugs:products"
	KeyBrandSlugs    = "slugs:brands"
	KeyCategorySlugs = "slugs:categories"
)

// SlugCache keeps the bare slug lists in redis with a TTL. A nil
// *SlugCache is a valid no-op, so callers never branch on whether
// caching is configured.
type SlugCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect dials redis per configuration. Returns nil (cache disabled)
// when no address is configured.
func Connect(cfg *config.RedisConfig) (*SlugCache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &SlugCache{client: rdb, ttl: cfg.TTL}, nil
}

// Get returns the cached slug list and whether it was present
func (c *SlugCache) Get(ctx context.Context, key string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var slugs []string
	if err := json.Unmarshal(raw, &slugs); err != nil {
		return nil, false
	}
	return slugs, true
}

// Set stores the slug list under key for the configured TTL
func (c *SlugCache) Set(ctx context.Context, key string, slugs []string) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(slugs)
	if err != nil {
		return
	}
	// Best effort; a failed write only costs a cache miss
	c.client.Set(ctx, key, raw, c.ttl)
}

// Invalidate drops the given keys after a catalog mutation
func (c *SlugCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}
