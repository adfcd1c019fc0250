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
)

func newRedisSessions(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionRepository(client), mr
}

func TestRedisSessionRoundTrip(t *testing.T) {
	repo, mr := newRedisSessions(t)
	ctx := context.Background()
	now := time.Now().UTC()
	session := models.Session{ID: "abc", UserID: 4, CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}

	require.NoError(t, repo.Create(ctx, session))
	assert.True(t, mr.Exists("session:abc"))
	assert.InDelta(t, (24 * time.Hour).Seconds(), mr.TTL("session:abc").Seconds(), 5)

	found, err := repo.Find(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 4, found.UserID)

	require.NoError(t, repo.Delete(ctx, "abc"))
	_, err = repo.Find(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionExpires(t *testing.T) {
	repo, mr := newRedisSessions(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, models.Session{ID: "ttl", UserID: 1, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	mr.FastForward(time.Hour + time.Second)

	_, err := repo.Find(ctx, "ttl")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionRejectsExpiredInput(t *testing.T) {
	repo, _ := newRedisSessions(t)
	err := repo.Create(context.Background(), models.Session{ID: "old", UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)})
	assert.Error(t, err)
}

func TestRedisSessionDeleteByUserKeepsCurrent(t *testing.T) {
	repo, _ := newRedisSessions(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)
	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, repo.Create(ctx, models.Session{ID: id, UserID: 7, ExpiresAt: expires}))
	}
	require.NoError(t, repo.Create(ctx, models.Session{ID: "other", UserID: 8, ExpiresAt: expires}))

	require.NoError(t, repo.DeleteByUser(ctx, 7, "s2"))

	_, err := repo.Find(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = repo.Find(ctx, "s2")
	assert.NoError(t, err)
	_, err = repo.Find(ctx, "other")
	assert.NoError(t, err)
}

func TestMemorySessionExpiry(t *testing.T) {
	repo := NewMemorySessionRepository()
	clock := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, models.Session{ID: "m1", UserID: 1, CreatedAt: clock, ExpiresAt: clock.Add(24 * time.Hour)}))
	_, err := repo.Find(ctx, "m1")
	require.NoError(t, err)

	clock = clock.Add(24 * time.Hour)
	_, err = repo.Find(ctx, "m1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionCreatePrunesExpired(t *testing.T) {
	repo := NewMemorySessionRepository()
	clock := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, models.Session{ID: "stale", UserID: 1, CreatedAt: clock, ExpiresAt: clock.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, models.Session{ID: "long", UserID: 2, CreatedAt: clock, ExpiresAt: clock.Add(48 * time.Hour)}))

	clock = clock.Add(2 * time.Hour)
	require.NoError(t, repo.Create(ctx, models.Session{ID: "fresh", UserID: 3, CreatedAt: clock, ExpiresAt: clock.Add(time.Hour)}))

	assert.NotContains(t, repo.sessions, "stale")
	assert.Contains(t, repo.sessions, "long")
	assert.Contains(t, repo.sessions, "fresh")
}
