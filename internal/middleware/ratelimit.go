package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// rateLimitKeyPrefix namespaces limiter counters in a shared Redis.
const rateLimitKeyPrefix = "finance_dashboard_ratelimit"

// RedisRateLimiter owns the Redis connection backing rate limit counters
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter connects to redisURL and verifies it answers.
func NewRedisRateLimiter(redisURL string) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRateLimiter{client: client}, nil
}

// Store returns a limiter store sharing this connection.
func (r *RedisRateLimiter) Store() (limiter.Store, error) {
	store, err := redisstore.NewStoreWithOptions(r.client, limiter.StoreOptions{
		Prefix: rateLimitKeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}

// Close closes the Redis connection
func (r *RedisRateLimiter) Close() error {
	return r.client.Close()
}

// PingContext checks if Redis is reachable
func (r *RedisRateLimiter) PingContext(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
