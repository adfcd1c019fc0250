package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

type auditLister interface {
	List(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

// AuditService exposes the audit trail to admins.
type AuditService struct {
	repo      auditLister
	validator *validator.Validate
}

// NewAuditService constructs an AuditService. A nil repo means the trail is disabled.
func NewAuditService(repo auditLister, validate *validator.Validate) *AuditService {
	if validate == nil {
		validate = validator.New()
	}
	return &AuditService{repo: repo, validator: validate}
}

// Enabled reports whether audit entries are being stored.
func (s *AuditService) Enabled() bool {
	return s != nil && s.repo != nil
}

// List returns the newest audit entries first.
func (s *AuditService) List(ctx context.Context, filter dto.AuditLogFilter) ([]models.AuditLog, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid audit filter")
	}
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "audit trail is disabled")
	}
	logs, err := s.repo.List(ctx, filter.Limit, filter.Offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit logs")
	}
	return logs, nil
}
