package cache

import (
	"fmt"
	"time"

	"github.com/jtrade/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// PositionCacheFactory creates position caches based on configuration
type PositionCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// PositionCacheFactoryOption is a functional option for configuring the factory
type PositionCacheFactoryOption func(*PositionCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) PositionCacheFactoryOption {
	return func(f *PositionCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache when
// Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) PositionCacheFactoryOption {
	return func(f *PositionCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewPositionCacheFactory creates a new factory
func NewPositionCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...PositionCacheFactoryOption) *PositionCacheFactory {
	f := &PositionCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Create builds a Redis-backed position cache, falling back to an in-memory
// cache when Redis is unreachable and fallback is allowed. In-memory caches do
// not share state across instances.
func (f *PositionCacheFactory) Create() (PositionCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisPositionCache(redisCfg,
		WithPositionTTL(f.ttl),
		WithPositionLogger(f.logger))
	if err == nil {
		f.logger.Info("using Redis position cache",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("failed to create Redis position cache: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory position cache",
		zap.Error(err))
	return NewInMemoryPositionCache(f.ttl), nil
}
