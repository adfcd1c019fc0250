package models

import "time"

// Stats is the singleton aggregate maintained alongside parcel and route writes.
type Stats struct {
	ActiveParcels    int       `json:"activeParcels"`
	ActiveRoutes     int       `json:"activeRoutes"`
	DelayedParcels   int       `json:"delayedParcels"`
	OnTimeRate       string    `json:"onTimeRate"`
	WeatherDelayRate string    `json:"weatherDelayRate"`
	TrafficDelayRate string    `json:"trafficDelayRate"`
	OtherDelayRate   string    `json:"otherDelayRate"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// StatsPatch is a partial update of the stats register.
type StatsPatch struct {
	ActiveParcels    *int
	ActiveRoutes     *int
	DelayedParcels   *int
	OnTimeRate       *string
	WeatherDelayRate *string
	TrafficDelayRate *string
	OtherDelayRate   *string
}
