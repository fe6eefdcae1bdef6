package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const jobKeyPrefix = "jobboard:job:"

// JobCache stores serialized job rows keyed by job id.
type JobCache interface {
	Get(ctx context.Context, jobID string) ([]byte, bool, error)
	Set(ctx context.Context, jobID string, payload []byte) error
	Invalidate(ctx context.Context, jobIDs ...string) error
}

type Config struct {
	Addr string
	DB   int
}

// NewRedisClient connects and pings redis.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

type RedisJobCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisJobCache(client *redis.Client, ttl time.Duration) *RedisJobCache {
	return &RedisJobCache{Client: client, TTL: ttl}
}

func (r *RedisJobCache) Get(ctx context.Context, jobID string) ([]byte, bool, error) {
	b, err := r.Client.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisJobCache) Set(ctx context.Context, jobID string, payload []byte) error {
	return r.Client.Set(ctx, jobKeyPrefix+jobID, payload, r.TTL).Err()
}

func (r *RedisJobCache) Invalidate(ctx context.Context, jobIDs ...string) error {
	if len(jobIDs) == 0 {
		return nil
	}
	keys := make([]string, len(jobIDs))
	for i, id := range jobIDs {
		keys[i] = jobKeyPrefix + id
	}
	return r.Client.Del(ctx, keys...).Err()
}

// Noop is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte) error         { return nil }
func (Noop) Invalidate(context.Context, ...string) error        { return nil }
