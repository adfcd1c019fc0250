package repository

import "github.com/noah-isme/logistics-tracker-api/internal/models"

func cloneRoute(r models.Route) models.Route { return r.Clone() }

// GetRoute returns the route with the given id.
func (s *Storage) GetRoute(id int) (models.Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes.get(id)
	if !ok {
		return models.Route{}, false
	}
	return r.Clone(), true
}

// GetRouteByParcelID returns the current route of a parcel: the newest active
// route, or the newest route of any state when none is active.
func (s *Storage) GetRouteByParcelID(parcelID int) (models.Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		latest, latestActive models.Route
		found, foundActive   bool
	)
	s.routes.scan(func(r models.Route) bool {
		if r.ParcelID != parcelID {
			return true
		}
		latest, found = r, true
		if r.Active {
			latestActive, foundActive = r, true
		}
		return true
	})
	switch {
	case foundActive:
		return latestActive.Clone(), true
	case found:
		return latest.Clone(), true
	}
	return models.Route{}, false
}

// ListRoutes returns a snapshot of every route ordered by id.
func (s *Storage) ListRoutes() []models.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes.filter(nil, cloneRoute)
}

// ListActiveRoutes returns a snapshot of the routes flagged active.
func (s *Storage) ListActiveRoutes() []models.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes.filter(func(r models.Route) bool { return r.Active }, cloneRoute)
}

// CreateRoute stores a new route and bumps activeRoutes when it starts active.
func (s *Storage) CreateRoute(input models.RouteInput) models.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	route := models.Route{
		ID:            s.routes.nextID(),
		ParcelID:      input.ParcelID,
		RoutePath:     input.RoutePath,
		TransportMode: input.TransportMode,
		Duration:      input.Duration,
		Distance:      input.Distance,
		Weather:       input.Weather,
		Traffic:       input.Traffic,
		Active:        input.Active,
		CreatedAt:     s.now(),
	}
	if route.RoutePath == nil {
		route.RoutePath = []models.Waypoint{}
	}
	route = route.Clone()
	s.routes.put(route.ID, route)

	if route.Active {
		s.updateStatsLocked(models.StatsPatch{ActiveRoutes: intPtr(s.stats.ActiveRoutes + 1)})
	}
	return route.Clone()
}

// UpdateRoute merges the patch into the route. Flipping active adjusts activeRoutes.
func (s *Storage) UpdateRoute(id int, patch models.RoutePatch) (models.Route, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, ok := s.routes.get(id)
	if !ok {
		return models.Route{}, false
	}
	wasActive := route.Active

	if patch.RoutePath != nil {
		route.RoutePath = patch.RoutePath
	}
	if patch.TransportMode != nil {
		route.TransportMode = *patch.TransportMode
	}
	if patch.Duration != nil {
		route.Duration = *patch.Duration
	}
	if patch.Distance != nil {
		route.Distance = *patch.Distance
	}
	if patch.Weather != nil {
		route.Weather = patch.Weather
	}
	if patch.Traffic != nil {
		route.Traffic = patch.Traffic
	}
	if patch.Active != nil {
		route.Active = *patch.Active
	}
	route = route.Clone()
	s.routes.put(id, route)

	switch {
	case route.Active && !wasActive:
		s.updateStatsLocked(models.StatsPatch{ActiveRoutes: intPtr(s.stats.ActiveRoutes + 1)})
	case wasActive && !route.Active:
		s.updateStatsLocked(models.StatsPatch{ActiveRoutes: intPtr(s.decremented("activeRoutes", s.stats.ActiveRoutes))})
	}
	return route.Clone(), true
}
