package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

type preferenceStore interface {
	GetPreferenceByUserID(userID int) (models.NotificationPreference, bool)
	CreatePreference(pref models.NotificationPreference) models.NotificationPreference
	UpdatePreference(userID int, patch models.NotificationPreferencePatch) (models.NotificationPreference, bool)
}

// PreferenceService manages per-user notification preferences.
type PreferenceService struct {
	store     preferenceStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(store preferenceStore, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PreferenceService{store: store, validator: validate, logger: logger}
}

// Get returns the user's preferences, creating the defaults on first access.
func (s *PreferenceService) Get(ctx context.Context, userID int) models.NotificationPreference {
	if pref, ok := s.store.GetPreferenceByUserID(userID); ok {
		return pref
	}
	s.logger.Debug("creating default notification preferences", zap.Int("user_id", userID))
	return s.store.CreatePreference(models.DefaultNotificationPreference(userID))
}

// Update applies a partial change to the user's preferences.
func (s *PreferenceService) Update(ctx context.Context, userID int, patch models.NotificationPreferencePatch) (*models.NotificationPreference, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	s.Get(ctx, userID)
	pref, ok := s.store.UpdatePreference(userID, patch)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "preferences not found")
	}
	return &pref, nil
}
