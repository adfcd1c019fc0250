package dto

import "github.com/noah-isme/logistics-tracker-api/internal/models"

// CreateNotificationRequest is sent by staff to notify a user about a parcel.
type CreateNotificationRequest struct {
	UserID   int                        `json:"userId" validate:"required,gt=0"`
	ParcelID int                        `json:"parcelId" validate:"required,gt=0"`
	Type     models.NotificationType    `json:"type" validate:"required,oneof=delay status_change delivery weather"`
	Message  string                     `json:"message" validate:"required,max=1000"`
	Channel  models.NotificationChannel `json:"channel" validate:"required,oneof=email sms push"`
}

// ToInput converts the request into a storage input.
func (r CreateNotificationRequest) ToInput() models.NotificationInput {
	return models.NotificationInput{
		UserID:   r.UserID,
		ParcelID: r.ParcelID,
		Type:     r.Type,
		Message:  r.Message,
		Channel:  r.Channel,
	}
}

// NotificationFilter narrows the caller's notification list.
type NotificationFilter struct {
	UnreadOnly bool `form:"unread"`
}
