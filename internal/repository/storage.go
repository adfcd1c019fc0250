package repository

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
)

// StatsObserver receives a copy of the stats register after every change and
// is told whenever a counter decrement had to be clamped at zero.
type StatsObserver interface {
	ObserveStats(stats models.Stats)
	RecordStatsClamp(counter string)
}

// Storage is the in-memory system of record for every entity plus the stats
// register. All access goes through a single lock so that an entity write and
// the stats write it implies are observed together.
//
// Lookups by username, tracking number, parcel id and user id scan the whole
// map. That is fine for dashboard-sized data sets and is kept deliberately
// simple; nothing here survives a restart.
type Storage struct {
	mu sync.RWMutex

	users         *entityTable[models.User]
	parcels       *entityTable[models.Parcel]
	routes        *entityTable[models.Route]
	notifications *entityTable[models.Notification]
	issues        *entityTable[models.Issue]
	preferences   *entityTable[models.NotificationPreference]
	stats         models.Stats

	logger         *zap.Logger
	observer       StatsObserver
	now            func() time.Time
	trackingNumber func() (string, error)
}

// NewStorage constructs an empty storage instance.
func NewStorage(logger *zap.Logger, observer StatsObserver) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Storage{
		users:          newEntityTable[models.User](),
		parcels:        newEntityTable[models.Parcel](),
		routes:         newEntityTable[models.Route](),
		notifications:  newEntityTable[models.Notification](),
		issues:         newEntityTable[models.Issue](),
		preferences:    newEntityTable[models.NotificationPreference](),
		logger:         logger,
		observer:       observer,
		now:            func() time.Time { return time.Now().UTC() },
		trackingNumber: GenerateTrackingNumber,
	}
	s.stats = models.Stats{
		OnTimeRate:       "0%",
		WeatherDelayRate: "0%",
		TrafficDelayRate: "0%",
		OtherDelayRate:   "0%",
		UpdatedAt:        s.now(),
	}
	return s
}

// GetStats returns the current stats register.
func (s *Storage) GetStats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// UpdateStats merges the patch into the stats register and always stamps updatedAt.
func (s *Storage) UpdateStats(patch models.StatsPatch) models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateStatsLocked(patch)
}

// updateStatsLocked is the only writer of s.stats. Callers hold s.mu.
func (s *Storage) updateStatsLocked(patch models.StatsPatch) models.Stats {
	if patch.ActiveParcels != nil {
		s.stats.ActiveParcels = *patch.ActiveParcels
	}
	if patch.ActiveRoutes != nil {
		s.stats.ActiveRoutes = *patch.ActiveRoutes
	}
	if patch.DelayedParcels != nil {
		s.stats.DelayedParcels = *patch.DelayedParcels
	}
	if patch.OnTimeRate != nil {
		s.stats.OnTimeRate = *patch.OnTimeRate
	}
	if patch.WeatherDelayRate != nil {
		s.stats.WeatherDelayRate = *patch.WeatherDelayRate
	}
	if patch.TrafficDelayRate != nil {
		s.stats.TrafficDelayRate = *patch.TrafficDelayRate
	}
	if patch.OtherDelayRate != nil {
		s.stats.OtherDelayRate = *patch.OtherDelayRate
	}
	s.stats.UpdatedAt = s.now()
	if s.observer != nil {
		s.observer.ObserveStats(s.stats)
	}
	return s.stats
}

// decremented returns current-1, clamped at zero. Hitting the clamp means the
// increment/decrement bookkeeping drifted from the real entity counts.
func (s *Storage) decremented(counter string, current int) int {
	if current <= 0 {
		s.logger.Warn("stats counter clamped at zero", zap.String("counter", counter), zap.Int("value", current))
		if s.observer != nil {
			s.observer.RecordStatsClamp(counter)
		}
		return 0
	}
	return current - 1
}

func intPtr(v int) *int {
	return &v
}
