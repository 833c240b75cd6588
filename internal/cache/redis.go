package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	// Namespace is prepended to every key.
	Namespace string
}

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	ns  string
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func NewRedisCache(rdb *redis.Client, cfg RedisConfig) *RedisCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "storefront:"
	}
	return &RedisCache{rdb: rdb, ttl: ttl, ns: ns}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, c.ns+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Default().WarnContext(ctx, "cache_get_failed", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte) {
	if err := c.rdb.Set(ctx, c.ns+key, val, c.ttl).Err(); err != nil {
		slog.Default().WarnContext(ctx, "cache_set_failed", "key", key, "err", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.ns + k
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		slog.Default().WarnContext(ctx, "cache_delete_failed", "keys", keys, "err", err)
	}
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) {
	iter := c.rdb.Scan(ctx, 0, c.ns+prefix+"*", 100).Iterator()
	del := func(batch []string) {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			slog.Default().WarnContext(ctx, "cache_delete_prefix_failed", "prefix", prefix, "keys", len(batch), "err", err)
		}
	}

	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			del(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		del(batch)
	}
	if err := iter.Err(); err != nil {
		slog.Default().WarnContext(ctx, "cache_delete_prefix_failed", "prefix", prefix, "err", err)
	}
}
