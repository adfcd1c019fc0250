package models

import (
	"encoding/json"
	"time"
)

// Waypoint is a named coordinate on a route path.
type Waypoint struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Route is the planned path of a single parcel. Weather and Traffic are opaque snapshots.
type Route struct {
	ID            int             `json:"id"`
	ParcelID      int             `json:"parcelId"`
	RoutePath     []Waypoint      `json:"routePath"`
	TransportMode TransportMode   `json:"transportMode"`
	Duration      int             `json:"duration"`
	Distance      float64         `json:"distance"`
	Weather       json.RawMessage `json:"weather,omitempty"`
	Traffic       json.RawMessage `json:"traffic,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// RouteInput carries the fields for creating a route.
type RouteInput struct {
	ParcelID      int
	RoutePath     []Waypoint
	TransportMode TransportMode
	Duration      int
	Distance      float64
	Weather       json.RawMessage
	Traffic       json.RawMessage
	Active        bool
}

// RoutePatch is a shallow partial update. Nil slices and raw messages mean "unchanged".
type RoutePatch struct {
	RoutePath     []Waypoint
	TransportMode *TransportMode
	Duration      *int
	Distance      *float64
	Weather       json.RawMessage
	Traffic       json.RawMessage
	Active        *bool
}

// Clone returns a deep copy of the route.
func (r Route) Clone() Route {
	if r.RoutePath != nil {
		path := make([]Waypoint, len(r.RoutePath))
		copy(path, r.RoutePath)
		r.RoutePath = path
	}
	r.Weather = cloneBytes(r.Weather)
	r.Traffic = cloneBytes(r.Traffic)
	return r
}
