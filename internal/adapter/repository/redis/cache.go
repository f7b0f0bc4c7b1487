package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/pocketledger/internal/usecase"
)

// Cache is a usecase.Cache over plain Redis strings in one namespace.
type Cache struct {
	client redis.Cmdable
	keys   keyspace
}

// NewCache creates a cache whose keys live under namespace, e.g. "stats".
func NewCache(client redis.Cmdable, namespace string) *Cache {
	return &Cache{client: client, keys: newKeyspace(namespace)}
}

// Get returns usecase.ErrCacheMiss for absent or expired keys.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.keys.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, usecase.ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value for ttl. A non-positive ttl is rejected; cached
// projections must always expire.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache set %s: ttl must be positive, got %s", key, ttl)
	}
	if err := c.client.Set(ctx, c.keys.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete drops key. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keys.key(key)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}
