package repository

import (
	"fmt"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

func cloneParcel(p models.Parcel) models.Parcel { return p.Clone() }

// GetParcel returns the parcel with the given id.
func (s *Storage) GetParcel(id int) (models.Parcel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parcels.get(id)
	if !ok {
		return models.Parcel{}, false
	}
	return p.Clone(), true
}

// GetParcelByTrackingNumber scans for the parcel carrying the tracking number.
func (s *Storage) GetParcelByTrackingNumber(trackingNumber string) (models.Parcel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parcelByTrackingLocked(trackingNumber)
	if !ok {
		return models.Parcel{}, false
	}
	return p.Clone(), true
}

func (s *Storage) parcelByTrackingLocked(trackingNumber string) (models.Parcel, bool) {
	return s.parcels.find(func(p models.Parcel) bool {
		return p.TrackingNumber == trackingNumber
	})
}

// ListParcels returns a snapshot of every parcel ordered by id.
func (s *Storage) ListParcels() []models.Parcel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parcels.filter(nil, cloneParcel)
}

// ListParcelsByUserID returns a snapshot of the parcels owned by the user.
func (s *Storage) ListParcelsByUserID(userID int) []models.Parcel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parcels.filter(func(p models.Parcel) bool { return p.UserID == userID }, cloneParcel)
}

// CreateParcel stores a new parcel, generating a tracking number when none is supplied,
// and bumps activeParcels (and delayedParcels for parcels born delayed).
func (s *Storage) CreateParcel(input models.ParcelInput) (models.Parcel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trackingNumber := input.TrackingNumber
	if trackingNumber == "" {
		generated, err := s.uniqueTrackingNumberLocked()
		if err != nil {
			return models.Parcel{}, err
		}
		trackingNumber = generated
	} else if _, exists := s.parcelByTrackingLocked(trackingNumber); exists {
		return models.Parcel{}, appErrors.Clone(appErrors.ErrConflict, "tracking number already exists")
	}

	status := input.Status
	if status == "" {
		status = models.ParcelStatusPreparing
	}

	parcel := models.Parcel{
		ID:                s.parcels.nextID(),
		TrackingNumber:    trackingNumber,
		UserID:            input.UserID,
		Origin:            input.Origin,
		Destination:       input.Destination,
		Status:            status,
		TransportMode:     input.TransportMode,
		Weight:            input.Weight,
		Dimensions:        input.Dimensions,
		CurrentLocation:   input.CurrentLocation,
		Notes:             input.Notes,
		DelayReason:       input.DelayReason,
		DelayDuration:     input.DelayDuration,
		CreatedAt:         s.now(),
		EstimatedDelivery: input.EstimatedDelivery,
		ActualDelivery:    nil,
	}
	parcel = parcel.Clone()
	s.parcels.put(parcel.ID, parcel)

	patch := models.StatsPatch{ActiveParcels: intPtr(s.stats.ActiveParcels + 1)}
	if status == models.ParcelStatusDelayed {
		patch.DelayedParcels = intPtr(s.stats.DelayedParcels + 1)
	}
	s.updateStatsLocked(patch)

	return parcel.Clone(), nil
}

func (s *Storage) uniqueTrackingNumberLocked() (string, error) {
	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		candidate, err := s.trackingNumber()
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate tracking number")
		}
		if _, exists := s.parcelByTrackingLocked(candidate); !exists {
			return candidate, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrTrackingNumberExhausted, fmt.Sprintf("no unique tracking number after %d attempts", maxTrackingAttempts))
}

// UpdateParcel merges the patch into the parcel. Transitions into or out of
// delayed adjust delayedParcels; every other change leaves the stats alone.
func (s *Storage) UpdateParcel(id int, patch models.ParcelPatch) (models.Parcel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parcel, ok := s.parcels.get(id)
	if !ok {
		return models.Parcel{}, false
	}
	previous := parcel.Status

	if patch.Origin != nil {
		parcel.Origin = *patch.Origin
	}
	if patch.Destination != nil {
		parcel.Destination = *patch.Destination
	}
	if patch.Status != nil {
		parcel.Status = *patch.Status
	}
	if patch.TransportMode != nil {
		parcel.TransportMode = *patch.TransportMode
	}
	if patch.Weight != nil {
		parcel.Weight = *patch.Weight
	}
	if patch.Dimensions != nil {
		parcel.Dimensions = patch.Dimensions
	}
	if patch.CurrentLocation != nil {
		parcel.CurrentLocation = patch.CurrentLocation
	}
	if patch.Notes != nil {
		parcel.Notes = patch.Notes
	}
	if patch.DelayReason != nil {
		parcel.DelayReason = patch.DelayReason
	}
	if patch.DelayDuration != nil {
		parcel.DelayDuration = patch.DelayDuration
	}
	if patch.EstimatedDelivery != nil {
		parcel.EstimatedDelivery = patch.EstimatedDelivery
	}
	if patch.ActualDelivery != nil {
		parcel.ActualDelivery = patch.ActualDelivery
	}
	parcel = parcel.Clone()
	s.parcels.put(id, parcel)

	wasDelayed := previous == models.ParcelStatusDelayed
	isDelayed := parcel.Status == models.ParcelStatusDelayed
	switch {
	case isDelayed && !wasDelayed:
		s.updateStatsLocked(models.StatsPatch{DelayedParcels: intPtr(s.stats.DelayedParcels + 1)})
	case wasDelayed && !isDelayed:
		s.updateStatsLocked(models.StatsPatch{DelayedParcels: intPtr(s.decremented("delayedParcels", s.stats.DelayedParcels))})
	}

	return parcel.Clone(), true
}

// DeleteParcel removes the parcel. Routes and notifications pointing at it are
// left in place. activeParcels is never decremented.
func (s *Storage) DeleteParcel(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	parcel, ok := s.parcels.get(id)
	if !ok {
		return false
	}
	s.parcels.remove(id)
	if parcel.Status == models.ParcelStatusDelayed {
		s.updateStatsLocked(models.StatsPatch{DelayedParcels: intPtr(s.decremented("delayedParcels", s.stats.DelayedParcels))})
	}
	return true
}
