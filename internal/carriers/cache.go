package carriers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
)

const (
	cacheKey = "carrier_rates:enabled"
	cacheTTL = 5 * time.Minute
)

// CachedRates serves the enabled rate cards from Redis with a
// singleflight-guarded fallback to Postgres, so a burst of quote
// requests after a cache miss issues one database read.
type CachedRates struct {
	repo   Repository
	client *redis.Client
	group  singleflight.Group
}

// NewCachedRates wraps repo with Redis caching. A nil client disables
// caching and reads straight through.
func NewCachedRates(repo Repository, client *redis.Client) *CachedRates {
	return &CachedRates{repo: repo, client: client}
}

// Enabled returns the rate cards of all enabled carriers.
func (c *CachedRates) Enabled(ctx context.Context) ([]rates.CarrierRate, error) {
	if c.client == nil {
		return c.repo.ListEnabled(ctx)
	}
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var cached []rates.CarrierRate
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// Corrupt entry: fall through and rebuild.
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not take quoting with it.
		return c.repo.ListEnabled(ctx)
	}

	v, err, _ := c.group.Do(cacheKey, func() (any, error) {
		configs, err := c.repo.ListEnabled(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(configs); err == nil {
			c.client.Set(ctx, cacheKey, data, cacheTTL)
		}
		return configs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]rates.CarrierRate), nil
}

// Invalidate drops the cached entry after an admin edit.
func (c *CachedRates) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	c.client.Del(ctx, cacheKey)
}
