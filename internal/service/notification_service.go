package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
	"github.com/noah-isme/logistics-tracker-api/pkg/jobs"
	"github.com/noah-isme/logistics-tracker-api/pkg/notify"
)

// JobTypeNotificationDelivery identifies queued notification deliveries.
const JobTypeNotificationDelivery = "notification.deliver"

// Delivery outcomes recorded on the notification counter.
const (
	deliveryOutcomeSent       = "sent"
	deliveryOutcomeSuppressed = "suppressed"
	deliveryOutcomeFailed     = "failed"
	deliveryOutcomeDropped    = "dropped"
)

type notificationStore interface {
	GetUser(id int) (models.User, bool)
	GetParcel(id int) (models.Parcel, bool)
	GetNotification(id int) (models.Notification, bool)
	ListNotifications() []models.Notification
	ListNotificationsByUserID(userID int) []models.Notification
	CreateNotification(input models.NotificationInput) models.Notification
	UpdateNotification(id int, patch models.NotificationPatch) (models.Notification, bool)
	GetPreferenceByUserID(userID int) (models.NotificationPreference, bool)
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// NotificationService records notifications and fans them out through a sender.
// Realtime recipients are delivered through the job queue as soon as the
// notification is stored; hourly and daily recipients wait for FlushDigests.
type NotificationService struct {
	store     notificationStore
	sender    notify.Sender
	queue     jobEnqueuer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService constructs a NotificationService. Without a queue
// deliveries happen inline.
func NewNotificationService(store notificationStore, sender notify.Sender, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if sender == nil {
		sender = notify.NewLogSender(logger)
	}
	return &NotificationService{
		store:     store,
		sender:    sender,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// UseQueue routes deliveries through the given queue.
func (s *NotificationService) UseQueue(queue jobEnqueuer) {
	s.queue = queue
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID int, filter dto.NotificationFilter) []models.Notification {
	items := s.store.ListNotificationsByUserID(userID)
	out := make([]models.Notification, 0, len(items))
	for _, n := range items {
		if filter.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Create stores a notification addressed by staff and schedules its delivery.
func (s *NotificationService) Create(ctx context.Context, req dto.CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}
	if _, ok := s.store.GetUser(req.UserID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	if _, ok := s.store.GetParcel(req.ParcelID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}

	n := s.store.CreateNotification(req.ToInput())
	s.schedule(n)
	return &n, nil
}

// NotifyParcelOwner records a system notification for the parcel's owner on
// the first channel the owner has enabled, preferring push, then email, then sms.
func (s *NotificationService) NotifyParcelOwner(ctx context.Context, parcel models.Parcel, kind models.NotificationType, message string) (*models.Notification, error) {
	if _, ok := s.store.GetUser(parcel.UserID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parcel owner not found")
	}
	pref := s.preferenceFor(parcel.UserID)
	n := s.store.CreateNotification(models.NotificationInput{
		UserID:   parcel.UserID,
		ParcelID: parcel.ID,
		Type:     kind,
		Message:  message,
		Channel:  preferredChannel(pref),
	})
	s.schedule(n)
	return &n, nil
}

// MarkRead flags the caller's notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, claims models.SessionClaims, id int) (*models.Notification, error) {
	n, ok := s.store.GetNotification(id)
	if !ok || (n.UserID != claims.UserID && !claims.Role.IsOperator()) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	read := true
	updated, ok := s.store.UpdateNotification(id, models.NotificationPatch{Read: &read})
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return &updated, nil
}

// FlushDigests schedules every unsent notification whose recipient batches at
// the given frequency. It returns the number of deliveries scheduled.
func (s *NotificationService) FlushDigests(ctx context.Context, frequency models.NotificationFrequency) int {
	scheduled := 0
	for _, n := range s.store.ListNotifications() {
		if n.Sent || s.preferenceFor(n.UserID).Frequency != frequency {
			continue
		}
		s.enqueue(ctx, n)
		scheduled++
	}
	if scheduled > 0 {
		s.logger.Info("notification digest flushed", zap.String("frequency", string(frequency)), zap.Int("scheduled", scheduled))
	}
	return scheduled
}

// RunDigests flushes hourly digests every hour and daily digests every 24th
// hour until ctx is cancelled.
func (s *NotificationService) RunDigests(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ticks++
			s.FlushDigests(ctx, models.FrequencyHourly)
			if ticks%24 == 0 {
				s.FlushDigests(ctx, models.FrequencyDaily)
			}
		}
	}
}

// HandleJob is the queue handler delivering one notification.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(int)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	return s.Deliver(ctx, id)
}

// DeadLetter records deliveries that exhausted their retries.
func (s *NotificationService) DeadLetter(job jobs.Job, err error) {
	channel := models.NotificationChannel("unknown")
	if id, ok := job.Payload.(int); ok {
		if n, found := s.store.GetNotification(id); found {
			channel = n.Channel
		}
	}
	s.record(channel, deliveryOutcomeDropped)
	s.logger.Error("notification delivery abandoned", zap.String("job_id", job.ID), zap.Error(err))
}

// Deliver sends a stored notification when the recipient's preferences allow
// its category and channel, then marks it sent. Suppressed notifications stay
// unsent and are not retried.
func (s *NotificationService) Deliver(ctx context.Context, id int) error {
	n, ok := s.store.GetNotification(id)
	if !ok || n.Sent {
		return nil
	}
	pref := s.preferenceFor(n.UserID)
	if !pref.Allows(n.Type, n.Channel) {
		s.record(n.Channel, deliveryOutcomeSuppressed)
		s.logger.Debug("notification suppressed by preferences", zap.Int("notification_id", n.ID), zap.Int("user_id", n.UserID))
		return nil
	}

	delivery := notify.Delivery{
		NotificationID: n.ID,
		UserID:         n.UserID,
		ParcelID:       n.ParcelID,
		Type:           string(n.Type),
		Channel:        string(n.Channel),
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
	}
	if user, found := s.store.GetUser(n.UserID); found {
		delivery.Recipient = recipientFor(user, n.Channel)
	}
	if err := s.sender.Send(ctx, delivery); err != nil {
		s.record(n.Channel, deliveryOutcomeFailed)
		return fmt.Errorf("send notification %d: %w", n.ID, err)
	}

	sent := true
	s.store.UpdateNotification(n.ID, models.NotificationPatch{Sent: &sent})
	s.record(n.Channel, deliveryOutcomeSent)
	return nil
}

func (s *NotificationService) schedule(n models.Notification) {
	if s.preferenceFor(n.UserID).Frequency != models.FrequencyRealtime {
		return
	}
	s.enqueue(context.Background(), n)
}

func (s *NotificationService) enqueue(ctx context.Context, n models.Notification) {
	if s.queue == nil {
		if err := s.Deliver(ctx, n.ID); err != nil {
			s.logger.Warn("notification delivery failed", zap.Int("notification_id", n.ID), zap.Error(err))
		}
		return
	}
	if err := s.queue.TryEnqueue(jobs.Job{Type: JobTypeNotificationDelivery, Payload: n.ID}); err != nil {
		s.record(n.Channel, deliveryOutcomeDropped)
		s.logger.Warn("notification not queued", zap.Int("notification_id", n.ID), zap.Error(err))
	}
}

func (s *NotificationService) preferenceFor(userID int) models.NotificationPreference {
	if pref, ok := s.store.GetPreferenceByUserID(userID); ok {
		return pref
	}
	return models.DefaultNotificationPreference(userID)
}

func (s *NotificationService) record(channel models.NotificationChannel, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordNotification(channel, outcome)
	}
}

func preferredChannel(pref models.NotificationPreference) models.NotificationChannel {
	switch {
	case pref.PushEnabled:
		return models.ChannelPush
	case pref.EmailEnabled:
		return models.ChannelEmail
	case pref.SMSEnabled:
		return models.ChannelSMS
	}
	return models.ChannelPush
}

func recipientFor(user models.User, channel models.NotificationChannel) string {
	switch channel {
	case models.ChannelEmail:
		return user.Email
	case models.ChannelSMS:
		if user.Phone != nil {
			return *user.Phone
		}
		return ""
	}
	return user.Username
}
