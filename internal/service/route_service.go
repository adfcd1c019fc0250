package service

import (
	"context"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

type routeStore interface {
	GetParcel(id int) (models.Parcel, bool)
	GetRoute(id int) (models.Route, bool)
	GetRouteByParcelID(parcelID int) (models.Route, bool)
	ListRoutes() []models.Route
	ListActiveRoutes() []models.Route
	CreateRoute(input models.RouteInput) models.Route
	UpdateRoute(id int, patch models.RoutePatch) (models.Route, bool)
}

// defaultOptionDistance is used for route options when a parcel has no planned route yet.
const defaultOptionDistance = 500.0

// modeProfile holds the canned figures used to price one transport mode.
type modeProfile struct {
	mode        models.TransportMode
	detour      float64
	speedKmh    float64
	handlingMin int
	costPerKm   float64
	costPerKg   float64
	co2PerKm    float64
	weatherRisk string
	trafficRisk string
	reliability string
}

var modeProfiles = []modeProfile{
	{mode: models.TransportRoad, detour: 1.0, speedKmh: 70, handlingMin: 30, costPerKm: 1.2, costPerKg: 0.05, co2PerKm: 0.12, weatherRisk: "medium", trafficRisk: "high", reliability: "92%"},
	{mode: models.TransportRail, detour: 1.1, speedKmh: 90, handlingMin: 90, costPerKm: 0.8, costPerKg: 0.03, co2PerKm: 0.03, weatherRisk: "low", trafficRisk: "low", reliability: "95%"},
	{mode: models.TransportAir, detour: 0.85, speedKmh: 700, handlingMin: 180, costPerKm: 4.5, costPerKg: 0.4, co2PerKm: 0.6, weatherRisk: "high", trafficRisk: "low", reliability: "97%"},
	{mode: models.TransportMultimodal, detour: 1.05, speedKmh: 80, handlingMin: 120, costPerKm: 1.0, costPerKg: 0.04, co2PerKm: 0.07, weatherRisk: "medium", trafficRisk: "medium", reliability: "94%"},
}

// RouteService manages planned parcel routes.
type RouteService struct {
	store     routeStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRouteService constructs a RouteService.
func NewRouteService(store routeStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RouteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RouteService{store: store, cache: cache, validator: validate, logger: logger}
}

// List returns every route.
func (s *RouteService) List(ctx context.Context) []models.Route {
	return s.store.ListRoutes()
}

// ListActive returns the routes currently in use.
func (s *RouteService) ListActive(ctx context.Context) []models.Route {
	return s.store.ListActiveRoutes()
}

// GetByParcel returns the current route of a parcel visible to the caller.
func (s *RouteService) GetByParcel(ctx context.Context, claims models.SessionClaims, parcelID int) (*models.Route, error) {
	if _, err := s.visibleParcel(claims, parcelID); err != nil {
		return nil, err
	}
	route, ok := s.store.GetRouteByParcelID(parcelID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "route not found")
	}
	return &route, nil
}

// Create plans a route for an existing parcel.
func (s *RouteService) Create(ctx context.Context, req dto.CreateRouteRequest) (*models.Route, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid route payload")
	}
	if _, ok := s.store.GetParcel(req.ParcelID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}
	route := s.store.CreateRoute(req.ToInput())
	s.logger.Info("route planned", zap.Int("route_id", route.ID), zap.Int("parcel_id", route.ParcelID), zap.Bool("active", route.Active))
	s.cache.InvalidateStats(ctx)
	return &route, nil
}

// Update patches a route.
func (s *RouteService) Update(ctx context.Context, id int, req dto.UpdateRouteRequest) (*models.Route, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid route payload")
	}
	route, ok := s.store.UpdateRoute(id, req.ToPatch())
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "route not found")
	}
	s.cache.InvalidateStats(ctx)
	return &route, nil
}

// Options returns canned alternatives for moving the parcel, one per transport
// mode. The figures are derived from the parcel's current route and weight and
// the cheapest option is flagged as recommended.
func (s *RouteService) Options(ctx context.Context, claims models.SessionClaims, parcelID int) ([]dto.RouteOption, error) {
	parcel, err := s.visibleParcel(claims, parcelID)
	if err != nil {
		return nil, err
	}

	distance := defaultOptionDistance
	path := []models.Waypoint{{Name: parcel.Origin}, {Name: parcel.Destination}}
	if route, ok := s.store.GetRouteByParcelID(parcelID); ok {
		if route.Distance > 0 {
			distance = route.Distance
		}
		if len(route.RoutePath) > 0 {
			path = route.RoutePath
		}
	}

	options := make([]dto.RouteOption, 0, len(modeProfiles))
	for _, p := range modeProfiles {
		km := round2(distance * p.detour)
		option := dto.RouteOption{
			TransportMode:   p.mode,
			Duration:        int(math.Round(km/p.speedKmh*60)) + p.handlingMin,
			Distance:        km,
			EstimatedCost:   round2(km*p.costPerKm + parcel.Weight*p.costPerKg),
			CO2Kg:           round2(km * p.co2PerKm * math.Max(parcel.Weight, 1) / 1000),
			RoutePath:       append([]models.Waypoint(nil), path...),
			WeatherRisk:     p.weatherRisk,
			TrafficRisk:     p.trafficRisk,
			ReliabilityRate: p.reliability,
		}
		options = append(options, option)
	}

	cheapest := 0
	for i := range options {
		if options[i].EstimatedCost < options[cheapest].EstimatedCost {
			cheapest = i
		}
	}
	options[cheapest].Recommended = true
	return options, nil
}

func (s *RouteService) visibleParcel(claims models.SessionClaims, parcelID int) (models.Parcel, error) {
	parcel, ok := s.store.GetParcel(parcelID)
	if !ok || !canSeeParcel(claims, parcel) {
		return models.Parcel{}, appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}
	return parcel, nil
}

// canSeeParcel reports whether the caller may read the parcel. Senders only see their own.
func canSeeParcel(claims models.SessionClaims, parcel models.Parcel) bool {
	return claims.Role.IsOperator() || parcel.UserID == claims.UserID
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
