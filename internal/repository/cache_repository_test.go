package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var stats models.Stats

	assert.ErrorIs(t, repo.Get(context.Background(), "stats", &stats), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "stats", stats, time.Minute))
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	repo := NewCacheRepository(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	ctx := context.Background()

	in := models.Stats{ActiveParcels: 3, DelayedParcels: 1, OnTimeRate: "94%"}
	require.NoError(t, repo.Set(ctx, "logistics:stats", in, time.Minute))

	var out models.Stats
	require.NoError(t, repo.Get(ctx, "logistics:stats", &out))
	assert.Equal(t, 3, out.ActiveParcels)
	assert.Equal(t, "94%", out.OnTimeRate)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "logistics:stats", &out), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDropsCorruptEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	repo := NewCacheRepository(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	require.NoError(t, mr.Set("logistics:stats", "{not json"))

	var out models.Stats
	assert.ErrorIs(t, repo.Get(context.Background(), "logistics:stats", &out), appErrors.ErrCacheMiss)
	assert.False(t, mr.Exists("logistics:stats"))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	mr := miniredis.RunT(t)
	repo := NewCacheRepository(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	ctx := context.Background()
	require.NoError(t, mr.Set("logistics:analytics:a", "1"))
	require.NoError(t, mr.Set("logistics:analytics:b", "1"))
	require.NoError(t, mr.Set("logistics:stats", "1"))

	require.NoError(t, repo.DeleteByPattern(ctx, "logistics:analytics:*"))

	assert.False(t, mr.Exists("logistics:analytics:a"))
	assert.False(t, mr.Exists("logistics:analytics:b"))
	assert.True(t, mr.Exists("logistics:stats"))
}
