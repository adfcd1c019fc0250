package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
	"github.com/noah-isme/logistics-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

type authUserStore interface {
	GetUser(id int) (models.User, bool)
	GetUserByUsername(username string) (models.User, bool)
	CreateUser(input models.UserInput) (models.User, error)
	UpdateUser(id int, patch models.UserPatch) (models.User, bool)
	CreatePreference(pref models.NotificationPreference) models.NotificationPreference
}

type sessionStore interface {
	Create(ctx context.Context, session models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID int, keep string) error
}

type auditRecorder interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	SessionTTL time.Duration
}

// AuthService verifies credentials and manages server-side sessions.
type AuthService struct {
	users     authUserStore
	sessions  sessionStore
	hasher    PasswordHasher
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
	dummyHash string
}

// NewAuthService constructs an AuthService instance. audit may be nil.
func NewAuthService(users authUserStore, sessions sessionStore, hasher PasswordHasher, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		audit:     audit,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: dummyPasswordHash(hasher, logger),
	}
}

// Register creates a user and their default notification preferences.
// Only an admin may create staff or admin accounts.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, actor *models.SessionClaims) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	role := req.Role
	if role == "" {
		role = models.RoleSender
	}
	if role != models.RoleSender && (actor == nil || actor.Role != models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can create staff or admin accounts")
	}

	if _, exists := s.users.GetUserByUsername(req.Username); exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user, err := s.users.CreateUser(models.UserInput{
		Username: req.Username,
		Password: hashed,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     role,
		Phone:    req.Phone,
	})
	if err != nil {
		return nil, err
	}
	s.users.CreatePreference(models.DefaultNotificationPreference(user.ID))

	s.record(ctx, &user.ID, models.AuditActionRegister, "user", strconv.Itoa(user.ID), map[string]interface{}{"role": user.Role}, models.RequestMeta{IP: req.IP, UserAgent: req.UserAgent})

	info := models.NewUserInfo(user)
	return &info, nil
}

// Login authenticates a user and opens a session. Unknown usernames and wrong
// passwords produce the same error after the same hashing work.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, found := s.users.GetUserByUsername(req.Username)
	hash := user.Password
	if !found {
		hash = s.dummyHash
	}
	if !s.hasher.Compare(req.Password, hash) || !found {
		s.logger.Info("login rejected", zap.String("ip", req.IP))
		return nil, appErrors.ErrInvalidCredentials
	}

	now := s.now()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	s.record(ctx, &user.ID, models.AuditActionLogin, "session", session.ID, map[string]interface{}{"status": "success"}, models.RequestMeta{IP: req.IP, UserAgent: req.UserAgent})

	return &models.LoginResponse{
		SessionID: session.ID,
		User:      models.NewUserInfo(user),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout ends the caller's session.
func (s *AuthService) Logout(ctx context.Context, claims models.SessionClaims, meta models.RequestMeta) error {
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end session")
	}
	s.record(ctx, &claims.UserID, models.AuditActionLogout, "session", claims.SessionID, nil, meta)
	return nil
}

// Resolve maps a session id back to the identity stored on the request context.
func (s *AuthService) Resolve(ctx context.Context, sessionID string) (*models.SessionClaims, error) {
	if sessionID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.ErrSessionExpired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, appErrors.ErrSessionExpired
	}

	user, ok := s.users.GetUser(session.UserID)
	if !ok {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session user no longer exists")
	}
	return &models.SessionClaims{
		SessionID: session.ID,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
	}, nil
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID int) (*models.User, error) {
	user, ok := s.users.GetUser(userID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return &user, nil
}

// ChangePassword replaces the caller's password and ends their other sessions.
func (s *AuthService) ChangePassword(ctx context.Context, claims models.SessionClaims, req models.ChangePasswordRequest, meta models.RequestMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}

	user, ok := s.users.GetUser(claims.UserID)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	if !s.hasher.Compare(req.CurrentPassword, user.Password) {
		return appErrors.Clone(appErrors.ErrForbidden, "current password does not match")
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if _, ok := s.users.UpdateUser(user.ID, models.UserPatch{Password: &hashed}); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}

	if err := s.sessions.DeleteByUser(ctx, user.ID, claims.SessionID); err != nil {
		s.logger.Warn("failed to end other sessions after password change", zap.Int("user_id", user.ID), zap.Error(err))
	}

	s.record(ctx, &user.ID, models.AuditActionPasswordChange, "user", strconv.Itoa(user.ID), nil, meta)
	return nil
}

// UpdateProfile patches the caller's email, full name or phone.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int, req models.UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	user, ok := s.users.UpdateUser(userID, models.UserPatch{Email: req.Email, FullName: req.FullName, Phone: req.Phone})
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return &user, nil
}

// dummyPasswordHash is compared against when a username is unknown, so that
// login costs one Compare whether or not the user exists.
func dummyPasswordHash(hasher PasswordHasher, logger *zap.Logger) string {
	hashed, err := hasher.Hash(uuid.NewString())
	if err != nil {
		logger.Warn("failed to prepare dummy password hash", zap.Error(err))
	}
	return hashed
}

func (s *AuthService) record(ctx context.Context, userID *int, action, resource, resourceID string, values map[string]interface{}, meta models.RequestMeta) {
	recordAudit(ctx, s.audit, s.logger, userID, action, resource, resourceID, values, meta)
}

func recordAudit(ctx context.Context, audit auditRecorder, logger *zap.Logger, userID *int, action, resource, resourceID string, values map[string]interface{}, meta models.RequestMeta) {
	if audit == nil {
		return
	}
	var payload []byte
	if values != nil {
		payload, _ = json.Marshal(values)
	}
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}
	if err := audit.Create(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
