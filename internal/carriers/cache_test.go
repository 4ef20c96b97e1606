package carriers

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
)

type countingRepo struct {
	Repository
	enabled []rates.CarrierRate
	calls   int
}

func (r *countingRepo) ListEnabled(ctx context.Context) ([]rates.CarrierRate, error) {
	r.calls++
	return r.enabled, nil
}

func newCacheFixture(t *testing.T) (*CachedRates, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	repo := &countingRepo{enabled: []rates.CarrierRate{validCard()}}
	return NewCachedRates(repo, client), repo, srv
}

func TestCachedRatesReadThrough(t *testing.T) {
	cache, repo, _ := newCacheFixture(t)
	ctx := context.Background()

	first, err := cache.Enabled(ctx)
	require.NoError(t, err)
	assert.Equal(t, repo.enabled, first)
	assert.Equal(t, 1, repo.calls)

	// Second read must come from Redis.
	second, err := cache.Enabled(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
}

func TestCachedRatesInvalidate(t *testing.T) {
	cache, repo, _ := newCacheFixture(t)
	ctx := context.Background()

	_, err := cache.Enabled(ctx)
	require.NoError(t, err)
	cache.Invalidate(ctx)

	repo.enabled = nil
	got, err := cache.Enabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 2, repo.calls)
}

func TestCachedRatesSurvivesRedisOutage(t *testing.T) {
	cache, repo, srv := newCacheFixture(t)
	srv.Close()

	got, err := cache.Enabled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo.enabled, got)
}

func TestCachedRatesNilClient(t *testing.T) {
	repo := &countingRepo{enabled: []rates.CarrierRate{validCard()}}
	cache := NewCachedRates(repo, nil)

	_, err := cache.Enabled(context.Background())
	require.NoError(t, err)
	_, err = cache.Enabled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
