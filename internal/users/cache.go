package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache keeps query results for a bounded time.
type Cache interface {
	// Get returns the users stored under key and whether they were found.
	Get(ctx context.Context, key string) ([]User, bool, error)
	// Set stores users under key with an absolute expiration of ttl.
	Set(ctx context.Context, key string, users []User, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryCache is a process-local Cache on top of go-cache.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache returns a MemoryCache whose expired entries are purged every
// cleanupInterval. A non-positive interval disables background purging;
// expired entries are still never returned.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get implements Cache. The returned slice is a copy.
func (c *MemoryCache) Get(_ context.Context, key string) ([]User, bool, error) {
	item, ok := c.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	list, ok := item.([]User)
	if !ok {
		return nil, false, nil
	}
	return cloneUsers(list), true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, users []User, ttl time.Duration) error {
	c.cache.Set(key, cloneUsers(users), ttl)
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

func cloneUsers(in []User) []User {
	if in == nil {
		return nil
	}
	out := make([]User, len(in))
	copy(out, in)
	for i := range out {
		if out[i].Orders != nil {
			out[i].Orders = append([]Order(nil), out[i].Orders...)
		}
	}
	return out
}

// RedisClient captures the subset of redis.Client used by RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache is a shared Cache storing JSON-encoded users in Redis.
type RedisCache struct {
	client RedisClient
	prefix string
}

// NewRedisCache returns a RedisCache. Keys are prefixed with prefix.
func NewRedisCache(client RedisClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// NewRedisClient connects a go-redis client to addr.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func (c *RedisCache) key(k string) string { return c.prefix + k }

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]User, bool, error) {
	body, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var list []User
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return list, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, users []User, ttl time.Duration) error {
	body, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(key), body, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
