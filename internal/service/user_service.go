package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

type userStore interface {
	GetUser(id int) (models.User, bool)
	ListUsers() []models.User
	UpdateUser(id int, patch models.UserPatch) (models.User, bool)
}

// UserService handles admin user management.
type UserService struct {
	store     userStore
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService. audit may be nil.
func NewUserService(store userStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{store: store, audit: audit, validator: validate, logger: logger}
}

// List returns users matching the filter with pagination metadata.
func (s *UserService) List(ctx context.Context, filter dto.UserFilter) ([]models.User, *models.Pagination, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user filter")
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.User, 0)
	for _, u := range s.store.ListUsers() {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Username), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(strings.ToLower(u.FullName), search) {
			continue
		}
		matched = append(matched, u)
	}

	start, end := pageBounds(filter.Page, filter.PageSize, len(matched))
	return matched[start:end], &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(matched)}, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	user, ok := s.store.GetUser(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return &user, nil
}

// UpdateRole changes a user's role. Admins cannot demote themselves.
func (s *UserService) UpdateRole(ctx context.Context, actor models.SessionClaims, id int, req dto.UpdateUserRoleRequest, meta models.RequestMeta) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}
	if actor.UserID == id && req.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admins cannot demote themselves")
	}
	previous, ok := s.store.GetUser(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	role := req.Role
	user, ok := s.store.UpdateUser(id, models.UserPatch{Role: &role})
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}

	s.logger.Info("user role changed", zap.Int("user_id", id), zap.String("from", string(previous.Role)), zap.String("to", string(role)), zap.Int("actor_id", actor.UserID))
	recordAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionRoleChange, "user", strconv.Itoa(id), map[string]interface{}{
		"from": previous.Role,
		"to":   role,
	}, meta)
	return &user, nil
}
