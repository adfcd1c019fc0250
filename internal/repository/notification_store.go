package repository

import "github.com/noah-isme/logistics-tracker-api/internal/models"

func sameNotification(n models.Notification) models.Notification { return n }

// GetNotification returns the notification with the given id.
func (s *Storage) GetNotification(id int) (models.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications.get(id)
}

// ListNotifications returns a snapshot of every notification ordered by id.
func (s *Storage) ListNotifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications.filter(nil, sameNotification)
}

// ListNotificationsByUserID returns a snapshot of the user's notifications.
func (s *Storage) ListNotificationsByUserID(userID int) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications.filter(func(n models.Notification) bool { return n.UserID == userID }, sameNotification)
}

// CreateNotification stores a new unread, unsent notification.
func (s *Storage) CreateNotification(input models.NotificationInput) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := models.Notification{
		ID:        s.notifications.nextID(),
		UserID:    input.UserID,
		ParcelID:  input.ParcelID,
		Type:      input.Type,
		Message:   input.Message,
		Channel:   input.Channel,
		Read:      false,
		Sent:      false,
		CreatedAt: s.now(),
	}
	s.notifications.put(n.ID, n)
	return n
}

// UpdateNotification flips the read/sent flags.
func (s *Storage) UpdateNotification(id int, patch models.NotificationPatch) (models.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications.get(id)
	if !ok {
		return models.Notification{}, false
	}
	if patch.Read != nil {
		n.Read = *patch.Read
	}
	if patch.Sent != nil {
		n.Sent = *patch.Sent
	}
	s.notifications.put(id, n)
	return n, true
}
