package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions connection settings
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisProvider Provider backed by redis
type RedisProvider struct {
	rdb *redis.Client
}

// NewRedisProvider connects and pings.
func NewRedisProvider(ctx context.Context, opts RedisOptions) (*RedisProvider, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return &RedisProvider{rdb: rdb}, nil
}

// NewRedisProviderFromClient wraps an existing client.
func NewRedisProviderFromClient(rdb *redis.Client) *RedisProvider {
	return &RedisProvider{rdb: rdb}
}

func (p *RedisProvider) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, key, data, expiration).Err()
}

func (p *RedisProvider) Get(ctx context.Context, key string, dest any) error {
	data, err := p.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (p *RedisProvider) Delete(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// Close closes the connection pool.
func (p *RedisProvider) Close() error {
	return p.rdb.Close()
}
