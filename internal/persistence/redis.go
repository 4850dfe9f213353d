package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gp-maquinas/maintenance-service/internal/config"
)

// ErrCacheMiss is returned when a key is absent or the cache is unavailable.
var ErrCacheMiss = errors.New("cache miss")

// Redis wraps the go-redis client. The service treats the cache as
// best-effort: an unreachable Redis degrades to direct DB reads.
type Redis struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, logger: logger}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// GetJSON loads a cached payload. Any failure reads as a miss.
func (r *Redis) GetJSON(ctx context.Context, key string) ([]byte, error) {
	if r == nil || r.Client == nil {
		return nil, ErrCacheMiss
	}
	val, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, ErrCacheMiss
	}
	return val, nil
}

// SetJSON stores a payload with TTL. Failures are logged and swallowed.
func (r *Redis) SetJSON(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if r == nil || r.Client == nil {
		return
	}
	if err := r.Client.Set(ctx, key, payload, ttl).Err(); err != nil {
		r.logger.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes keys matching the given exact keys.
func (r *Redis) Invalidate(ctx context.Context, keys ...string) {
	if r == nil || r.Client == nil || len(keys) == 0 {
		return
	}
	if err := r.Client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Debug("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
