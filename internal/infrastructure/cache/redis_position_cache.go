package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPositionCache implements PositionCache using Redis. Suitable for
// distributed deployments where multiple instances share the cache.
type RedisPositionCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	keyPrefix  string
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisPositionCacheOption is a functional option for configuring the cache
type RedisPositionCacheOption func(*RedisPositionCache)

// WithPositionTTL sets the cache TTL
func WithPositionTTL(ttl time.Duration) RedisPositionCacheOption {
	return func(c *RedisPositionCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPositionLogger sets the logger for the cache
func WithPositionLogger(logger *zap.Logger) RedisPositionCacheOption {
	return func(c *RedisPositionCache) {
		c.logger = logger
	}
}

// NewRedisPositionCache creates a new Redis-based position cache
func NewRedisPositionCache(cfg RedisConfig, opts ...RedisPositionCacheOption) (*RedisPositionCache, error) {
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

	cache := &RedisPositionCache{
		client:     client,
		ownsClient: true,
		keyPrefix:  defaultPositionKeyPrefix,
		ttl:        defaultPositionTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache, nil
}

// NewRedisPositionCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisPositionCacheWithClient(client *redis.Client, opts ...RedisPositionCacheOption) *RedisPositionCache {
	cache := &RedisPositionCache{
		client:    client,
		keyPrefix: defaultPositionKeyPrefix,
		ttl:       defaultPositionTTL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

func (c *RedisPositionCache) key(partyID uuid.UUID) string {
	return c.keyPrefix + partyID.String()
}

// Get returns the cached position, or (nil, nil) on a miss. A corrupt payload
// counts as a miss and is dropped.
func (c *RedisPositionCache) Get(ctx context.Context, partyID uuid.UUID) (*settlement.PartyPosition, error) {
	data, err := c.client.Get(ctx, c.key(partyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached position: %w", err)
	}

	var pos settlement.PartyPosition
	if err := json.Unmarshal(data, &pos); err != nil {
		c.logger.Warn("dropping corrupt cached position",
			zap.String("party_id", partyID.String()),
			zap.Error(err))
		_ = c.client.Del(ctx, c.key(partyID)).Err()
		return nil, nil
	}
	return &pos, nil
}

// Set stores a position for the configured TTL
func (c *RedisPositionCache) Set(ctx context.Context, pos *settlement.PartyPosition) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal position: %w", err)
	}
	if err := c.client.Set(ctx, c.key(pos.PartyID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache position: %w", err)
	}
	return nil
}

// Invalidate drops a party's cached position
func (c *RedisPositionCache) Invalidate(ctx context.Context, partyID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(partyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached position: %w", err)
	}
	return nil
}

// Close closes the Redis client if this cache owns it
func (c *RedisPositionCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisPositionCache implements PositionCache
var _ PositionCache = (*RedisPositionCache)(nil)
