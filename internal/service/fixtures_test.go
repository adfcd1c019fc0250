package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
	"github.com/noah-isme/logistics-tracker-api/internal/repository"
	"github.com/noah-isme/logistics-tracker-api/pkg/notify"
)

func newTestStore() *repository.Storage {
	return repository.NewStorage(zap.NewNop(), nil)
}

func seedUser(t *testing.T, store *repository.Storage, username string, role models.UserRole) models.User {
	t.Helper()
	user, err := store.CreateUser(models.UserInput{
		Username: username,
		Password: "hashed:secret123",
		Email:    username + "@logistics.test",
		FullName: username,
		Role:     role,
	})
	require.NoError(t, err)
	store.CreatePreference(models.DefaultNotificationPreference(user.ID))
	return user
}

func seedParcel(t *testing.T, store *repository.Storage, owner int, status models.ParcelStatus) models.Parcel {
	t.Helper()
	parcel, err := store.CreateParcel(models.ParcelInput{
		UserID:        owner,
		Origin:        "Rotterdam",
		Destination:   "Berlin",
		Status:        status,
		TransportMode: models.TransportRoad,
		Weight:        10,
	})
	require.NoError(t, err)
	return parcel
}

func claimsFor(u models.User) models.SessionClaims {
	return models.SessionClaims{SessionID: "sess-" + u.Username, UserID: u.ID, Username: u.Username, Role: u.Role}
}

// newTestCache returns an enabled cache service backed by miniredis.
func newTestCache(t *testing.T, metrics *MetricsService) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(repository.NewCacheRepository(client, zap.NewNop()), metrics, time.Minute, zap.NewNop(), true), mr
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []notify.Delivery
	err   error
	calls int
}

func (s *recordingSender) Send(_ context.Context, d notify.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, d)
	return nil
}

func (s *recordingSender) Close() error { return nil }

func (s *recordingSender) deliveries() []notify.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Delivery(nil), s.sent...)
}
