package models

import "time"

// ParcelStatus enumerates the lifecycle states of a parcel.
type ParcelStatus string

const (
	ParcelStatusPreparing    ParcelStatus = "preparing"
	ParcelStatusInTransit    ParcelStatus = "in_transit"
	ParcelStatusDelayed      ParcelStatus = "delayed"
	ParcelStatusDelivered    ParcelStatus = "delivered"
	ParcelStatusCustomsCheck ParcelStatus = "customs_check"
)

// TransportMode enumerates how a parcel or route travels.
type TransportMode string

const (
	TransportRoad       TransportMode = "road"
	TransportRail       TransportMode = "rail"
	TransportAir        TransportMode = "air"
	TransportMultimodal TransportMode = "multimodal"
)

// Parcel is a tracked shipment owned by a user.
type Parcel struct {
	ID                int           `json:"id"`
	TrackingNumber    string        `json:"trackingNumber"`
	UserID            int           `json:"userId"`
	Origin            string        `json:"origin"`
	Destination       string        `json:"destination"`
	Status            ParcelStatus  `json:"status"`
	TransportMode     TransportMode `json:"transportMode"`
	Weight            float64       `json:"weight"`
	Dimensions        *string       `json:"dimensions,omitempty"`
	CurrentLocation   *string       `json:"currentLocation,omitempty"`
	Notes             *string       `json:"notes,omitempty"`
	DelayReason       *string       `json:"delayReason,omitempty"`
	DelayDuration     *string       `json:"delayDuration,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	EstimatedDelivery *time.Time    `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time    `json:"actualDelivery"`
}

// ParcelInput carries the fields for creating a parcel. An empty TrackingNumber is generated.
type ParcelInput struct {
	TrackingNumber    string
	UserID            int
	Origin            string
	Destination       string
	Status            ParcelStatus
	TransportMode     TransportMode
	Weight            float64
	Dimensions        *string
	CurrentLocation   *string
	Notes             *string
	DelayReason       *string
	DelayDuration     *string
	EstimatedDelivery *time.Time
}

// ParcelPatch is a shallow partial update. TrackingNumber is immutable and therefore absent.
type ParcelPatch struct {
	Origin            *string
	Destination       *string
	Status            *ParcelStatus
	TransportMode     *TransportMode
	Weight            *float64
	Dimensions        *string
	CurrentLocation   *string
	Notes             *string
	DelayReason       *string
	DelayDuration     *string
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
}

// Clone returns a deep copy of the parcel.
func (p Parcel) Clone() Parcel {
	p.Dimensions = cloneString(p.Dimensions)
	p.CurrentLocation = cloneString(p.CurrentLocation)
	p.Notes = cloneString(p.Notes)
	p.DelayReason = cloneString(p.DelayReason)
	p.DelayDuration = cloneString(p.DelayDuration)
	p.EstimatedDelivery = cloneTime(p.EstimatedDelivery)
	p.ActualDelivery = cloneTime(p.ActualDelivery)
	return p
}
