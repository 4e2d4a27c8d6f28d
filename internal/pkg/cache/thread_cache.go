// Package cache holds the positive-only index of known message threads.
//
// The index is owned by the messaging service and built by bootstrap at
// startup. It only ever answers "known"; a miss means "ask the database".
// Threads are never deleted, so entries are never invalidated and a cold or
// shared index is always safe.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultThreadKey is the Redis set holding known thread participant ids
const DefaultThreadKey = "clubhub:threads:known"

// ThreadCache answers positive thread-existence lookups
type ThreadCache interface {
	Has(ctx context.Context, participantID int64) (bool, error)
	Add(ctx context.Context, participantIDs ...int64) error
}

// RedisConfig configures the Redis client
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a client and checks connectivity with a Ping
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisThreadCache stores known thread ids in a Redis set shared by all instances
type RedisThreadCache struct {
	client redis.Cmdable
	key    string
}

// NewRedisThreadCache creates a cache on the given client. An empty key uses DefaultThreadKey.
func NewRedisThreadCache(client redis.Cmdable, key string) *RedisThreadCache {
	if key == "" {
		key = DefaultThreadKey
	}
	return &RedisThreadCache{client: client, key: key}
}

// Has reports whether participantID is a known thread
func (c *RedisThreadCache) Has(ctx context.Context, participantID int64) (bool, error) {
	ok, err := c.client.SIsMember(ctx, c.key, strconv.FormatInt(participantID, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("thread cache lookup: %w", err)
	}
	return ok, nil
}

// Add records participant ids as known threads
func (c *RedisThreadCache) Add(ctx context.Context, participantIDs ...int64) error {
	if len(participantIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(participantIDs))
	for i, id := range participantIDs {
		members[i] = strconv.FormatInt(id, 10)
	}
	if err := c.client.SAdd(ctx, c.key, members...).Err(); err != nil {
		return fmt.Errorf("thread cache add: %w", err)
	}
	return nil
}

// Warm loads the ids of every existing thread into the cache
func Warm(ctx context.Context, c ThreadCache, load func(ctx context.Context) ([]int64, error)) (int, error) {
	ids, err := load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load thread ids: %w", err)
	}
	if err := c.Add(ctx, ids...); err != nil {
		return 0, err
	}
	return len(ids), nil
}
