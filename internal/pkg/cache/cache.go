// Package cache provides a small JSON read-through cache. Redis is optional;
// without an address every lookup misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

// Keys used by the services
const (
	KeyClassStrength = "students:class-strength"
)

// Store reads and writes JSON values
type Store interface {
	// GetJSON decodes the cached value into dest and reports whether it was found
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis. It returns a nil client when no address is
// configured or the server cannot be reached, and the application runs uncached.
func NewRedisClient(ctx context.Context, opts Options) *redis.Client {
	if opts.Addr == "" {
		logger.Warn().Msg("REDIS_ADDR is not set, caching is disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error().Err(err).Str("addr", opts.Addr).Msg("Failed to connect to Redis, caching is disabled")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", opts.Addr).Msg("Redis connection established")
	return client
}

// New wraps client, falling back to a no-op store when it is nil
func New(client *redis.Client) Store {
	if client == nil {
		return NoopStore{}
	}
	return &RedisStore{client: client}
}

// RedisStore keeps JSON blobs in Redis
type RedisStore struct {
	client *redis.Client
}

// GetJSON implements Store
func (s *RedisStore) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached value")
		return false, nil
	}
	return true, nil
}

// SetJSON implements Store
func (s *RedisStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// NoopStore never stores anything
type NoopStore struct{}

// GetJSON always misses
func (NoopStore) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }

// SetJSON discards the value
func (NoopStore) SetJSON(context.Context, string, interface{}, time.Duration) error { return nil }

// Delete does nothing
func (NoopStore) Delete(context.Context, ...string) error { return nil }
