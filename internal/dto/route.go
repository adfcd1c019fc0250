package dto

import (
	"encoding/json"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
)

// WaypointRequest is one point of a submitted route path.
type WaypointRequest struct {
	Name string  `json:"name" validate:"required,max=255"`
	Lat  float64 `json:"lat" validate:"min=-90,max=90"`
	Lng  float64 `json:"lng" validate:"min=-180,max=180"`
}

func toWaypoints(in []WaypointRequest) []models.Waypoint {
	if in == nil {
		return nil
	}
	out := make([]models.Waypoint, len(in))
	for i, w := range in {
		out[i] = models.Waypoint{Name: w.Name, Lat: w.Lat, Lng: w.Lng}
	}
	return out
}

// CreateRouteRequest is the payload for planning a route.
type CreateRouteRequest struct {
	ParcelID      int                  `json:"parcelId" validate:"required,gt=0"`
	RoutePath     []WaypointRequest    `json:"routePath" validate:"required,min=2,dive"`
	TransportMode models.TransportMode `json:"transportMode" validate:"required,oneof=road rail air multimodal"`
	Duration      int                  `json:"duration" validate:"min=0"`
	Distance      float64              `json:"distance" validate:"min=0"`
	Weather       json.RawMessage      `json:"weather"`
	Traffic       json.RawMessage      `json:"traffic"`
	Active        *bool                `json:"active"`
}

// ToInput converts the request into a storage input. Routes are active unless stated otherwise.
func (r CreateRouteRequest) ToInput() models.RouteInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.RouteInput{
		ParcelID:      r.ParcelID,
		RoutePath:     toWaypoints(r.RoutePath),
		TransportMode: r.TransportMode,
		Duration:      r.Duration,
		Distance:      r.Distance,
		Weather:       r.Weather,
		Traffic:       r.Traffic,
		Active:        active,
	}
}

// UpdateRouteRequest is a partial route update.
type UpdateRouteRequest struct {
	RoutePath     []WaypointRequest     `json:"routePath" validate:"omitempty,min=2,dive"`
	TransportMode *models.TransportMode `json:"transportMode" validate:"omitempty,oneof=road rail air multimodal"`
	Duration      *int                  `json:"duration" validate:"omitempty,min=0"`
	Distance      *float64              `json:"distance" validate:"omitempty,min=0"`
	Weather       json.RawMessage       `json:"weather"`
	Traffic       json.RawMessage       `json:"traffic"`
	Active        *bool                 `json:"active"`
}

// ToPatch converts the request into a storage patch.
func (r UpdateRouteRequest) ToPatch() models.RoutePatch {
	return models.RoutePatch{
		RoutePath:     toWaypoints(r.RoutePath),
		TransportMode: r.TransportMode,
		Duration:      r.Duration,
		Distance:      r.Distance,
		Weather:       r.Weather,
		Traffic:       r.Traffic,
		Active:        r.Active,
	}
}

// RouteOption is one canned alternative offered for a parcel.
type RouteOption struct {
	TransportMode   models.TransportMode `json:"transportMode"`
	Duration        int                  `json:"duration"`
	Distance        float64              `json:"distance"`
	EstimatedCost   float64              `json:"estimatedCost"`
	CO2Kg           float64              `json:"co2Kg"`
	Recommended     bool                 `json:"recommended"`
	RoutePath       []models.Waypoint    `json:"routePath"`
	WeatherRisk     string               `json:"weatherRisk"`
	TrafficRisk     string               `json:"trafficRisk"`
	ReliabilityRate string               `json:"reliabilityRate"`
}
