package repository

import "github.com/noah-isme/logistics-tracker-api/internal/models"

// GetPreferenceByUserID scans for the preference row of the user.
func (s *Storage) GetPreferenceByUserID(userID int) (models.NotificationPreference, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferenceByUserLocked(userID)
}

func (s *Storage) preferenceByUserLocked(userID int) (models.NotificationPreference, bool) {
	return s.preferences.find(func(p models.NotificationPreference) bool { return p.UserID == userID })
}

// CreatePreference stores the preference row for a user, returning the existing
// row instead when the user already has one.
func (s *Storage) CreatePreference(input models.NotificationPreference) models.NotificationPreference {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.preferenceByUserLocked(input.UserID); ok {
		return existing
	}
	input.ID = s.preferences.nextID()
	if input.Frequency == "" {
		input.Frequency = models.FrequencyRealtime
	}
	s.preferences.put(input.ID, input)
	return input
}

// UpdatePreference merges the patch into the user's preference row.
func (s *Storage) UpdatePreference(userID int, patch models.NotificationPreferencePatch) (models.NotificationPreference, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pref, ok := s.preferenceByUserLocked(userID)
	if !ok {
		return models.NotificationPreference{}, false
	}
	if patch.DelayAlerts != nil {
		pref.DelayAlerts = *patch.DelayAlerts
	}
	if patch.StatusChanges != nil {
		pref.StatusChanges = *patch.StatusChanges
	}
	if patch.DeliveryAlerts != nil {
		pref.DeliveryAlerts = *patch.DeliveryAlerts
	}
	if patch.WeatherAlerts != nil {
		pref.WeatherAlerts = *patch.WeatherAlerts
	}
	if patch.EmailEnabled != nil {
		pref.EmailEnabled = *patch.EmailEnabled
	}
	if patch.SMSEnabled != nil {
		pref.SMSEnabled = *patch.SMSEnabled
	}
	if patch.PushEnabled != nil {
		pref.PushEnabled = *patch.PushEnabled
	}
	if patch.Frequency != nil {
		pref.Frequency = *patch.Frequency
	}
	s.preferences.put(pref.ID, pref)
	return pref, true
}
