package dto

import (
	"time"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
)

// CreateParcelRequest is the payload for registering a parcel. UserID is only
// honoured for staff and admin callers creating on behalf of a sender.
type CreateParcelRequest struct {
	TrackingNumber    string               `json:"trackingNumber" validate:"omitempty,min=4,max=32"`
	UserID            *int                 `json:"userId" validate:"omitempty,gt=0"`
	Origin            string               `json:"origin" validate:"required,max=255"`
	Destination       string               `json:"destination" validate:"required,max=255"`
	Status            models.ParcelStatus  `json:"status" validate:"omitempty,oneof=preparing in_transit delayed delivered customs_check"`
	TransportMode     models.TransportMode `json:"transportMode" validate:"required,oneof=road rail air multimodal"`
	Weight            float64              `json:"weight" validate:"gt=0"`
	Dimensions        *string              `json:"dimensions" validate:"omitempty,max=64"`
	CurrentLocation   *string              `json:"currentLocation" validate:"omitempty,max=255"`
	Notes             *string              `json:"notes" validate:"omitempty,max=2000"`
	DelayReason       *string              `json:"delayReason" validate:"omitempty,max=255"`
	DelayDuration     *string              `json:"delayDuration" validate:"omitempty,max=64"`
	EstimatedDelivery *time.Time           `json:"estimatedDelivery"`
}

// ToInput converts the request into a storage input owned by ownerID.
func (r CreateParcelRequest) ToInput(ownerID int) models.ParcelInput {
	return models.ParcelInput{
		TrackingNumber:    r.TrackingNumber,
		UserID:            ownerID,
		Origin:            r.Origin,
		Destination:       r.Destination,
		Status:            r.Status,
		TransportMode:     r.TransportMode,
		Weight:            r.Weight,
		Dimensions:        r.Dimensions,
		CurrentLocation:   r.CurrentLocation,
		Notes:             r.Notes,
		DelayReason:       r.DelayReason,
		DelayDuration:     r.DelayDuration,
		EstimatedDelivery: r.EstimatedDelivery,
	}
}

// UpdateParcelRequest is a partial parcel update. Absent fields are untouched.
type UpdateParcelRequest struct {
	Origin            *string               `json:"origin" validate:"omitempty,min=1,max=255"`
	Destination       *string               `json:"destination" validate:"omitempty,min=1,max=255"`
	Status            *models.ParcelStatus  `json:"status" validate:"omitempty,oneof=preparing in_transit delayed delivered customs_check"`
	TransportMode     *models.TransportMode `json:"transportMode" validate:"omitempty,oneof=road rail air multimodal"`
	Weight            *float64              `json:"weight" validate:"omitempty,gt=0"`
	Dimensions        *string               `json:"dimensions" validate:"omitempty,max=64"`
	CurrentLocation   *string               `json:"currentLocation" validate:"omitempty,max=255"`
	Notes             *string               `json:"notes" validate:"omitempty,max=2000"`
	DelayReason       *string               `json:"delayReason" validate:"omitempty,max=255"`
	DelayDuration     *string               `json:"delayDuration" validate:"omitempty,max=64"`
	EstimatedDelivery *time.Time            `json:"estimatedDelivery"`
	ActualDelivery    *time.Time            `json:"actualDelivery"`
}

// ToPatch converts the request into a storage patch.
func (r UpdateParcelRequest) ToPatch() models.ParcelPatch {
	return models.ParcelPatch{
		Origin:            r.Origin,
		Destination:       r.Destination,
		Status:            r.Status,
		TransportMode:     r.TransportMode,
		Weight:            r.Weight,
		Dimensions:        r.Dimensions,
		CurrentLocation:   r.CurrentLocation,
		Notes:             r.Notes,
		DelayReason:       r.DelayReason,
		DelayDuration:     r.DelayDuration,
		EstimatedDelivery: r.EstimatedDelivery,
		ActualDelivery:    r.ActualDelivery,
	}
}

// ParcelFilter narrows parcel listings.
type ParcelFilter struct {
	Status        models.ParcelStatus  `form:"status" validate:"omitempty,oneof=preparing in_transit delayed delivered customs_check"`
	TransportMode models.TransportMode `form:"transportMode" validate:"omitempty,oneof=road rail air multimodal"`
	Search        string               `form:"q" validate:"omitempty,max=100"`
	Page          int                  `form:"page" validate:"omitempty,min=1"`
	PageSize      int                  `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

// TrackingLinkResponse is returned when a public tracking link is issued.
type TrackingLinkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PublicParcelView is the subset of a parcel exposed through a tracking link.
type PublicParcelView struct {
	TrackingNumber    string               `json:"trackingNumber"`
	Origin            string               `json:"origin"`
	Destination       string               `json:"destination"`
	Status            models.ParcelStatus  `json:"status"`
	TransportMode     models.TransportMode `json:"transportMode"`
	CurrentLocation   *string              `json:"currentLocation,omitempty"`
	DelayReason       *string              `json:"delayReason,omitempty"`
	EstimatedDelivery *time.Time           `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time           `json:"actualDelivery"`
	Route             *models.Route        `json:"route,omitempty"`
}

// NewPublicParcelView projects a parcel and its current route for anonymous viewers.
func NewPublicParcelView(p models.Parcel, route *models.Route) PublicParcelView {
	return PublicParcelView{
		TrackingNumber:    p.TrackingNumber,
		Origin:            p.Origin,
		Destination:       p.Destination,
		Status:            p.Status,
		TransportMode:     p.TransportMode,
		CurrentLocation:   p.CurrentLocation,
		DelayReason:       p.DelayReason,
		EstimatedDelivery: p.EstimatedDelivery,
		ActualDelivery:    p.ActualDelivery,
		Route:             route,
	}
}
