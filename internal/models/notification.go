package models

import "time"

// NotificationType categorises a notification.
type NotificationType string

const (
	NotificationDelay        NotificationType = "delay"
	NotificationStatusChange NotificationType = "status_change"
	NotificationDelivery     NotificationType = "delivery"
	NotificationWeather      NotificationType = "weather"
)

// NotificationChannel is the medium a notification is delivered through.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
	ChannelPush  NotificationChannel = "push"
)

// Notification is a message addressed to a user about a parcel.
type Notification struct {
	ID        int                 `json:"id"`
	UserID    int                 `json:"userId"`
	ParcelID  int                 `json:"parcelId"`
	Type      NotificationType    `json:"type"`
	Message   string              `json:"message"`
	Channel   NotificationChannel `json:"channel"`
	Read      bool                `json:"read"`
	Sent      bool                `json:"sent"`
	CreatedAt time.Time           `json:"createdAt"`
}

// NotificationInput carries the fields for creating a notification.
type NotificationInput struct {
	UserID   int
	ParcelID int
	Type     NotificationType
	Message  string
	Channel  NotificationChannel
}

// NotificationPatch only exposes the delivery flags; everything else is immutable.
type NotificationPatch struct {
	Read *bool
	Sent *bool
}

// NotificationFrequency controls how often a user wants to be notified.
type NotificationFrequency string

const (
	FrequencyRealtime NotificationFrequency = "realtime"
	FrequencyHourly   NotificationFrequency = "hourly"
	FrequencyDaily    NotificationFrequency = "daily"
)

// NotificationPreference holds per-user notification toggles. One row per user.
type NotificationPreference struct {
	ID             int                   `json:"id"`
	UserID         int                   `json:"userId"`
	DelayAlerts    bool                  `json:"delayAlerts"`
	StatusChanges  bool                  `json:"statusChanges"`
	DeliveryAlerts bool                  `json:"deliveryAlerts"`
	WeatherAlerts  bool                  `json:"weatherAlerts"`
	EmailEnabled   bool                  `json:"emailEnabled"`
	SMSEnabled     bool                  `json:"smsEnabled"`
	PushEnabled    bool                  `json:"pushEnabled"`
	Frequency      NotificationFrequency `json:"frequency"`
}

// DefaultNotificationPreference returns the preference row created for new users.
func DefaultNotificationPreference(userID int) NotificationPreference {
	return NotificationPreference{
		UserID:         userID,
		DelayAlerts:    true,
		StatusChanges:  true,
		DeliveryAlerts: true,
		WeatherAlerts:  true,
		EmailEnabled:   true,
		SMSEnabled:     false,
		PushEnabled:    true,
		Frequency:      FrequencyRealtime,
	}
}

// NotificationPreferencePatch is a partial update of the toggles.
type NotificationPreferencePatch struct {
	DelayAlerts    *bool                  `json:"delayAlerts"`
	StatusChanges  *bool                  `json:"statusChanges"`
	DeliveryAlerts *bool                  `json:"deliveryAlerts"`
	WeatherAlerts  *bool                  `json:"weatherAlerts"`
	EmailEnabled   *bool                  `json:"emailEnabled"`
	SMSEnabled     *bool                  `json:"smsEnabled"`
	PushEnabled    *bool                  `json:"pushEnabled"`
	Frequency      *NotificationFrequency `json:"frequency" validate:"omitempty,oneof=realtime hourly daily"`
}

// Allows reports whether a notification of the given type and channel should be delivered.
func (p NotificationPreference) Allows(kind NotificationType, channel NotificationChannel) bool {
	var category bool
	switch kind {
	case NotificationDelay:
		category = p.DelayAlerts
	case NotificationStatusChange:
		category = p.StatusChanges
	case NotificationDelivery:
		category = p.DeliveryAlerts
	case NotificationWeather:
		category = p.WeatherAlerts
	}
	if !category {
		return false
	}
	switch channel {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelSMS:
		return p.SMSEnabled
	case ChannelPush:
		return p.PushEnabled
	}
	return false
}
