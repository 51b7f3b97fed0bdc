package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/kasira/internal/catalog/domain"
)

var errCacheMiss = errors.New("cache_miss")

// productCache is a read-through redis cache in front of the catalog
// table. Registers look prices up on every scan, so the hot set is tiny
// and a short TTL keeps back-office edits visible quickly.
type productCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newProductCache(client *redis.Client) *productCache {
	return &productCache{client: client, ttl: 5 * time.Minute}
}

func (c *productCache) Get(ctx context.Context, id snowflake.ID) (*domain.Product, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &product, nil
}

func (c *productCache) Set(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(product.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *productCache) Invalidate(ctx context.Context, id snowflake.ID) error {
	return c.client.Del(ctx, cacheKey(id)).Err()
}

func cacheKey(id snowflake.ID) string {
	return fmt.Sprintf("product:%s", id.String())
}
