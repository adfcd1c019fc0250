package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
)

type analyticsStore interface {
	GetStats() models.Stats
	UpdateStats(patch models.StatsPatch) models.Stats
	ListParcels() []models.Parcel
	ListActiveIssues() []models.Issue
}

var (
	parcelStatuses = []models.ParcelStatus{
		models.ParcelStatusPreparing,
		models.ParcelStatusInTransit,
		models.ParcelStatusDelayed,
		models.ParcelStatusCustomsCheck,
		models.ParcelStatusDelivered,
	}
	transportModes = []models.TransportMode{
		models.TransportRoad,
		models.TransportRail,
		models.TransportAir,
		models.TransportMultimodal,
	}
	issueSeverities = []models.IssueSeverity{
		models.SeverityHigh,
		models.SeverityMedium,
		models.SeverityLow,
	}
)

// AnalyticsService serves the stats register and dashboard breakdowns with cache integration.
type AnalyticsService struct {
	store   analyticsStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(store analyticsStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger, ttl time.Duration) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Stats returns the stats register. The boolean indicates whether it came from cache.
func (s *AnalyticsService) Stats(ctx context.Context) (models.Stats, bool) {
	var cached models.Stats
	if s.cache.Get(ctx, cacheKeyStats, &cached) {
		return cached, true
	}
	stats := s.store.GetStats()
	s.cache.Set(ctx, cacheKeyStats, stats, s.ttl)
	return stats, false
}

// Refresh recomputes the rate strings from the current parcels and writes
// them to the stats register. The counters are left to the storage layer.
func (s *AnalyticsService) Refresh(ctx context.Context) models.Stats {
	parcels := s.store.ListParcels()

	delivered, onTime := 0, 0
	var delays dto.DelayBreakdown
	for _, p := range parcels {
		switch p.Status {
		case models.ParcelStatusDelivered:
			delivered++
			if deliveredOnTime(p) {
				onTime++
			}
		case models.ParcelStatusDelayed:
			countDelay(&delays, p)
		}
	}
	totalDelayed := delays.Weather + delays.Traffic + delays.Other

	onTimeRate := percent(onTime, delivered)
	weather := percent(delays.Weather, totalDelayed)
	traffic := percent(delays.Traffic, totalDelayed)
	other := percent(delays.Other, totalDelayed)
	stats := s.store.UpdateStats(models.StatsPatch{
		OnTimeRate:       &onTimeRate,
		WeatherDelayRate: &weather,
		TrafficDelayRate: &traffic,
		OtherDelayRate:   &other,
	})
	s.cache.InvalidateStats(ctx)
	s.logger.Info("stats rates refreshed",
		zap.String("on_time_rate", onTimeRate),
		zap.Int("delivered", delivered),
		zap.Int("delayed", totalDelayed),
	)
	return stats
}

// Summary composes the analytics dashboard payload. System metrics are
// always current even when the rest is served from cache.
func (s *AnalyticsService) Summary(ctx context.Context) (*dto.AnalyticsSummary, bool) {
	var summary dto.AnalyticsSummary
	hit := s.cache.Get(ctx, cacheKeyAnalyticsSummary, &summary)
	if !hit {
		summary = s.composeSummary()
		s.cache.Set(ctx, cacheKeyAnalyticsSummary, summary, s.ttl)
	}
	if s.metrics != nil {
		snapshot := s.metrics.Snapshot()
		summary.System = &snapshot
	}
	return &summary, hit
}

func (s *AnalyticsService) composeSummary() dto.AnalyticsSummary {
	parcels := s.store.ListParcels()

	byStatus := make(map[models.ParcelStatus]int, len(parcelStatuses))
	byMode := make(map[models.TransportMode]int, len(transportModes))
	var delays dto.DelayBreakdown
	for _, p := range parcels {
		byStatus[p.Status]++
		byMode[p.TransportMode]++
		if p.Status == models.ParcelStatusDelayed {
			countDelay(&delays, p)
		}
	}

	bySeverity := make(map[models.IssueSeverity]int, len(issueSeverities))
	for _, issue := range s.store.ListActiveIssues() {
		bySeverity[issue.Severity]++
	}

	summary := dto.AnalyticsSummary{
		Stats:           s.store.GetStats(),
		ByStatus:        make([]dto.StatusCount, 0, len(parcelStatuses)),
		ByTransportMode: make([]dto.TransportModeCount, 0, len(transportModes)),
		ActiveIssues:    make([]dto.IssueSeverityCount, 0, len(issueSeverities)),
		Delays:          delays,
		GeneratedAt:     s.now(),
	}
	for _, status := range parcelStatuses {
		summary.ByStatus = append(summary.ByStatus, dto.StatusCount{Status: status, Count: byStatus[status]})
	}
	for _, mode := range transportModes {
		summary.ByTransportMode = append(summary.ByTransportMode, dto.TransportModeCount{TransportMode: mode, Count: byMode[mode]})
	}
	for _, severity := range issueSeverities {
		summary.ActiveIssues = append(summary.ActiveIssues, dto.IssueSeverityCount{Severity: severity, Count: bySeverity[severity]})
	}
	return summary
}

// deliveredOnTime treats parcels without an estimate, or without a recorded
// delivery time, as on time.
func deliveredOnTime(p models.Parcel) bool {
	if p.EstimatedDelivery == nil || p.ActualDelivery == nil {
		return true
	}
	return !p.ActualDelivery.After(*p.EstimatedDelivery)
}

// countDelay attributes a delayed parcel to weather, traffic or other based on its delay reason.
func countDelay(b *dto.DelayBreakdown, p models.Parcel) {
	reason := ""
	if p.DelayReason != nil {
		reason = strings.ToLower(*p.DelayReason)
	}
	switch {
	case strings.Contains(reason, "weather"), strings.Contains(reason, "storm"), strings.Contains(reason, "snow"):
		b.Weather++
	case strings.Contains(reason, "traffic"), strings.Contains(reason, "congestion"):
		b.Traffic++
	default:
		b.Other++
	}
}

// percent formats part/total as a whole percentage string such as "87%".
func percent(part, total int) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(float64(part)*100/float64(total))))
}
