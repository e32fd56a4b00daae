package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ListCache stores product listings per filter under a generation number.
// Invalidate starts a new generation, so a listing read from the database
// before an invalidation can never be served after it.
type ListCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, f Filter) ([]*Product, bool, error)
	Set(ctx context.Context, gen int64, f Filter, products []*Product) error
	Invalidate(ctx context.Context) error
}

type noopCache struct{}

// NewNoopCache returns a cache that never hits. Used when Redis is not configured.
func NewNoopCache() ListCache { return noopCache{} }

func (noopCache) Generation(context.Context) (int64, error)                    { return 0, nil }
func (noopCache) Get(context.Context, int64, Filter) ([]*Product, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, int64, Filter, []*Product) error         { return nil }
func (noopCache) Invalidate(context.Context) error                             { return nil }

const generationKey = "catalog:products:generation"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache caches listings as JSON blobs. Listings of older
// generations are left to expire with the TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) ListCache {
	return &redisCache{client: client, ttl: ttl}
}

func listKey(gen int64, f Filter) string {
	return "catalog:products:" + strconv.FormatInt(gen, 10) + ":" + string(f.Category) + ":" + strings.ToLower(f.Search)
}

func (c *redisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisCache) Get(ctx context.Context, gen int64, f Filter) ([]*Product, bool, error) {
	raw, err := c.client.Get(ctx, listKey(gen, f)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var products []*Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (c *redisCache) Set(ctx context.Context, gen int64, f Filter, products []*Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listKey(gen, f), raw, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}
