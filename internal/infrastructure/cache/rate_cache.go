package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pricingapp "github.com/aurum/backend/internal/application/pricing"
	"github.com/aurum/backend/internal/domain/pricing"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/aurum/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisRateCache implements the pricing rate cache using Redis.
// Suitable for distributed deployments where multiple instances
// quote from the same current rate.
type RedisRateCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRateCache creates a new Redis-backed rate cache
func NewRedisRateCache(cfg config.RedisConfig) (*RedisRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRateCache{
		client:    client,
		keyPrefix: "pricing:rate:current:",
	}, nil
}

// NewRedisRateCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisRateCacheWithClient(client *redis.Client, keyPrefix string) *RedisRateCache {
	if keyPrefix == "" {
		keyPrefix = "pricing:rate:current:"
	}
	return &RedisRateCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (c *RedisRateCache) key(karat valueobject.KaratGrade) string {
	return c.keyPrefix + string(karat)
}

// GetCurrent returns the cached current rate for a karat grade.
// A cache miss returns nil with no error.
func (c *RedisRateCache) GetCurrent(ctx context.Context, karat valueobject.KaratGrade) (*pricing.GoldRate, error) {
	payload, err := c.client.Get(ctx, c.key(karat)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached rate: %w", err)
	}

	var rate pricing.GoldRate
	if err := json.Unmarshal(payload, &rate); err != nil {
		// A corrupt entry behaves like a miss; the caller refetches
		// from the repository and overwrites it.
		return nil, nil
	}
	return &rate, nil
}

// SetCurrent caches the current rate for a karat grade with a TTL
func (c *RedisRateCache) SetCurrent(ctx context.Context, rate *pricing.GoldRate, ttl time.Duration) error {
	payload, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to encode rate: %w", err)
	}
	if err := c.client.Set(ctx, c.key(rate.Karat), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rate: %w", err)
	}
	return nil
}

// Invalidate drops the cached rate for a karat grade
func (c *RedisRateCache) Invalidate(ctx context.Context, karat valueobject.KaratGrade) error {
	if err := c.client.Del(ctx, c.key(karat)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached rate: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisRateCache) Close() error {
	return c.client.Close()
}

// Ensure RedisRateCache implements the application cache interface
var _ pricingapp.RateCache = (*RedisRateCache)(nil)
