package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedis accepts a redis:// URL or a bare host:port.
func OpenRedis(ctx context.Context, addr string) (*RedisStore, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  queryTimeout,
			WriteTimeout: queryTimeout,
		}
	}

	s := NewRedisStore(redis.NewClient(opts))
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return s, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.client.Ping(ctx).Err()
	})
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		v, err = s.client.Get(ctx, key).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores without expiry; the cart lives until the shopper changes it.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.client.Set(ctx, key, value, 0).Err()
	})
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
