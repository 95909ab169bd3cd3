package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	appfinance "github.com/dmitriyabr/duma-erp-sub001/internal/application/finance"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisBalanceCache implements the advisory balance cache on Redis. Entries
// carry a TTL so a missed invalidation self-heals; correctness-critical
// reads never consult this cache.
type RedisBalanceCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DefaultBalanceTTL bounds how long a stale cached balance can survive a
// missed refresh
const DefaultBalanceTTL = 15 * time.Minute

// NewRedisBalanceCache creates a new Redis-backed balance cache
func NewRedisBalanceCache(cfg RedisConfig, ttl time.Duration) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisBalanceCacheWithClient(client, "", ttl), nil
}

// NewRedisBalanceCacheWithClient creates a cache over an existing client.
// Useful for testing or when sharing a client across components.
func NewRedisBalanceCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisBalanceCache {
	if keyPrefix == "" {
		keyPrefix = "student:balance:"
	}
	if ttl <= 0 {
		ttl = DefaultBalanceTTL
	}
	return &RedisBalanceCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached balance and whether one was present
func (c *RedisBalanceCache) Get(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+studentID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read cached balance: %w", err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		// unparsable entry: treat as a miss rather than poisoning readers
		return decimal.Zero, false, nil
	}
	return balance, true, nil
}

// Set stores a freshly derived balance with the configured TTL
func (c *RedisBalanceCache) Set(ctx context.Context, studentID uuid.UUID, balance decimal.Decimal) error {
	if err := c.client.Set(ctx, c.keyPrefix+studentID.String(), balance.StringFixed(2), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache balance: %w", err)
	}
	return nil
}

// Invalidate drops the cached balance
func (c *RedisBalanceCache) Invalidate(ctx context.Context, studentID uuid.UUID) error {
	if err := c.client.Del(ctx, c.keyPrefix+studentID.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached balance: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisBalanceCache) Close() error {
	return c.client.Close()
}

// Ensure RedisBalanceCache implements BalanceCache
var _ appfinance.BalanceCache = (*RedisBalanceCache)(nil)
