package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Delivery is a notification handed to an outbound channel.
type Delivery struct {
	NotificationID int       `json:"notificationId"`
	UserID         int       `json:"userId"`
	ParcelID       int       `json:"parcelId"`
	Type           string    `json:"type"`
	Channel        string    `json:"channel"`
	Message        string    `json:"message"`
	Recipient      string    `json:"recipient,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RoutingKey is the topic a delivery is published under, e.g. "notification.email.delay".
func (d Delivery) RoutingKey() string {
	return "notification." + d.Channel + "." + d.Type
}

// Sender pushes a delivery to its channel.
type Sender interface {
	Send(ctx context.Context, delivery Delivery) error
	Close() error
}

// LogSender writes deliveries to the application log. It is used when no broker is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the delivery.
func (s *LogSender) Send(_ context.Context, d Delivery) error {
	s.logger.Info("notification delivered",
		zap.Int("notification_id", d.NotificationID),
		zap.Int("user_id", d.UserID),
		zap.Int("parcel_id", d.ParcelID),
		zap.String("channel", d.Channel),
		zap.String("type", d.Type),
	)
	return nil
}

// Close is a no-op.
func (s *LogSender) Close() error { return nil }
