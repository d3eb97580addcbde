package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the menu is not in the cache.
var ErrCacheMiss = errors.New("menu not cached")

const menuKey = "menu:all"

// MenuCache keeps the full menu listing in Redis so the hot read path
// skips the database. Writers invalidate it on every catalog change.
type MenuCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMenuCache(client *redis.Client, ttl time.Duration) *MenuCache {
	return &MenuCache{client: client, ttl: ttl}
}

func (c *MenuCache) Get(ctx context.Context) ([]Product, error) {
	data, err := c.client.Get(ctx, menuKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal menu failed: %w", err)
	}
	return products, nil
}

func (c *MenuCache) Set(ctx context.Context, products []Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal menu failed: %w", err)
	}

	if err := c.client.Set(ctx, menuKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *MenuCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, menuKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
