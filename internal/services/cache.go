package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
)

// ListingCache stores rendered job list pages. Invalidate drops every page.
type ListingCache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	Invalidate(ctx context.Context) error
}

// NopCache is used when Redis is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, interface{}) error         { return nil }
func (NopCache) Invalidate(context.Context) error                       { return nil }

const (
	cachePrefix        = "jobx:jobs:"
	cacheGenerationKey = cachePrefix + "generation"
)

// RedisCache namespaces page keys by a generation counter, so invalidation
// is a single INCR and stale pages age out through their TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache parses a redis:// URL. The connection is checked lazily.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperr.Wrap(err, "parse redis url")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCache{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, cacheGenerationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, apperr.Wrap(err, "read cache generation")
	}
	raw, err := c.rdb.Get(ctx, pageKey(gen, key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(err, "read cached page")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, apperr.Wrap(err, "decode cached page")
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, v interface{}) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return apperr.Wrap(err, "read cache generation")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return apperr.Wrap(err, "encode page")
	}
	return c.rdb.Set(ctx, pageKey(gen, key), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, cacheGenerationKey).Err()
}

func (c *RedisCache) Close() error { return c.rdb.Close() }

func pageKey(gen int64, key string) string {
	return fmt.Sprintf("%sg%d:%s", cachePrefix, gen, key)
}

// listKey is the cache key of a normalized list query.
func listKey(q dtos.JobListQuery) string {
	return strings.Join([]string{
		"loc=" + strings.ToLower(strings.TrimSpace(q.Location)),
		"type=" + q.JobType,
		"mode=" + q.WorkMode,
		"tier=" + q.Tier,
		"q=" + strings.ToLower(strings.TrimSpace(q.Search)),
		fmt.Sprintf("p=%d", q.Page),
		fmt.Sprintf("l=%d", q.Limit),
	}, "|")
}
