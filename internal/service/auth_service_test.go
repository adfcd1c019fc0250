package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
	"github.com/noah-isme/logistics-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

// countingHasher is a reversible stand-in for bcrypt that counts calls.
type countingHasher struct {
	hashCalls    int
	compareCalls int
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.hashCalls++
	return "hashed:" + plaintext, nil
}

func (h *countingHasher) Compare(plaintext, hash string) bool {
	h.compareCalls++
	return hash == "hashed:"+plaintext
}

type mockAuditRecorder struct {
	entries []*models.AuditLog
}

func (m *mockAuditRecorder) Create(_ context.Context, log *models.AuditLog) error {
	m.entries = append(m.entries, log)
	return nil
}

func (m *mockAuditRecorder) actions() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type authFixture struct {
	svc      *AuthService
	store    *repository.Storage
	sessions *repository.MemorySessionRepository
	hasher   *countingHasher
	audit    *mockAuditRecorder
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := repository.NewStorage(zap.NewNop(), nil)
	sessions := repository.NewMemorySessionRepository()
	hasher := &countingHasher{}
	audit := &mockAuditRecorder{}
	svc := NewAuthService(store, sessions, hasher, audit, validator.New(), zap.NewNop(), AuthConfig{SessionTTL: 24 * time.Hour})
	hasher.hashCalls = 0
	return &authFixture{svc: svc, store: store, sessions: sessions, hasher: hasher, audit: audit}
}

func registerRequest(username string) models.RegisterRequest {
	return models.RegisterRequest{Username: username, Password: "secret123", Email: username + "@example.com", FullName: "Test User"}
}

func TestAuthServiceRegisterCreatesUserAndPreferences(t *testing.T) {
	f := newAuthFixture(t)

	info, err := f.svc.Register(context.Background(), registerRequest("alice"), nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSender, info.Role)

	stored, ok := f.store.GetUserByUsername("alice")
	require.True(t, ok)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, f.hasher.Compare("secret123", stored.Password))

	pref, ok := f.store.GetPreferenceByUserID(info.ID)
	require.True(t, ok)
	assert.Equal(t, models.DefaultNotificationPreference(info.ID).Frequency, pref.Frequency)
	assert.True(t, pref.EmailEnabled)
	assert.False(t, pref.SMSEnabled)
	assert.Equal(t, []string{models.AuditActionRegister}, f.audit.actions())
}

func TestAuthServiceRegisterDuplicateSkipsHashing(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), registerRequest("bob"), nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.hasher.hashCalls)

	_, err = f.svc.Register(context.Background(), registerRequest("bob"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, 1, f.hasher.hashCalls)
	assert.Len(t, f.store.ListUsers(), 1)
}

func TestAuthServiceRegisterPrivilegedRoleRequiresAdmin(t *testing.T) {
	f := newAuthFixture(t)
	req := registerRequest("carol")
	req.Role = models.RoleStaff

	_, err := f.svc.Register(context.Background(), req, nil)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = f.svc.Register(context.Background(), req, &models.SessionClaims{UserID: 9, Role: models.RoleStaff})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Zero(t, f.hasher.hashCalls)

	info, err := f.svc.Register(context.Background(), req, &models.SessionClaims{UserID: 9, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, info.Role)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)
	req := registerRequest("dave")
	req.Email = "not-an-email"

	_, err := f.svc.Register(context.Background(), req, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceLoginAndResolve(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerRequest("erin"), nil)
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, models.LoginRequest{Username: "erin", Password: "secret123", IP: "10.0.0.2"})
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	assert.Equal(t, "erin", res.User.Username)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, time.Minute)

	claims, err := f.svc.Resolve(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, models.RoleSender, claims.Role)
	assert.Contains(t, f.audit.actions(), models.AuditActionLogin)
}

func TestAuthServiceLoginDoesNotRevealUnknownUsers(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerRequest("frank"), nil)
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, models.LoginRequest{Username: "frank", Password: "nope"})
	comparesBefore := f.hasher.compareCalls
	_, unknownUser := f.svc.Login(ctx, models.LoginRequest{Username: "ghost", Password: "nope"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	assert.ErrorIs(t, unknownUser, appErrors.ErrInvalidCredentials)
	assert.Equal(t, comparesBefore+1, f.hasher.compareCalls)
}

func TestAuthServiceUnknownUserLoginDoesNoExtraHashing(t *testing.T) {
	hasher := &countingHasher{}
	svc := NewAuthService(repository.NewStorage(zap.NewNop(), nil), repository.NewMemorySessionRepository(), hasher, nil, nil, nil, AuthConfig{})
	require.Equal(t, 1, hasher.hashCalls)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "secret123"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	assert.Equal(t, 1, hasher.hashCalls)
	assert.Equal(t, 1, hasher.compareCalls)
}

func TestAuthServiceResolveExpiredSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerRequest("gina"), nil)
	require.NoError(t, err)
	res, err := f.svc.Login(ctx, models.LoginRequest{Username: "gina", Password: "secret123"})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().UTC().Add(24 * time.Hour) }

	_, err = f.svc.Resolve(ctx, res.SessionID)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
	_, err = f.sessions.Find(ctx, res.SessionID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestAuthServiceResolveUnknownSession(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
	_, err = f.svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerRequest("hank"), nil)
	require.NoError(t, err)
	res, err := f.svc.Login(ctx, models.LoginRequest{Username: "hank", Password: "secret123"})
	require.NoError(t, err)
	claims, err := f.svc.Resolve(ctx, res.SessionID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, *claims, models.RequestMeta{}))

	_, err = f.svc.Resolve(ctx, res.SessionID)
	assert.Error(t, err)
	assert.Contains(t, f.audit.actions(), models.AuditActionLogout)
}

func TestAuthServiceChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerRequest("ivy"), nil)
	require.NoError(t, err)
	current, err := f.svc.Login(ctx, models.LoginRequest{Username: "ivy", Password: "secret123"})
	require.NoError(t, err)
	other, err := f.svc.Login(ctx, models.LoginRequest{Username: "ivy", Password: "secret123"})
	require.NoError(t, err)
	claims, err := f.svc.Resolve(ctx, current.SessionID)
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, *claims, models.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newsecret"}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, f.svc.ChangePassword(ctx, *claims, models.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"}, models.RequestMeta{}))

	_, err = f.svc.Resolve(ctx, current.SessionID)
	assert.NoError(t, err)
	_, err = f.svc.Resolve(ctx, other.SessionID)
	assert.Error(t, err)

	_, err = f.svc.Login(ctx, models.LoginRequest{Username: "ivy", Password: "secret123"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, models.LoginRequest{Username: "ivy", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestAuthServiceUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	info, err := f.svc.Register(ctx, registerRequest("jack"), nil)
	require.NoError(t, err)

	bad := "nope"
	_, err = f.svc.UpdateProfile(ctx, info.ID, models.UpdateProfileRequest{Email: &bad})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	email := "jack@logistics.test"
	user, err := f.svc.UpdateProfile(ctx, info.ID, models.UpdateProfileRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "Test User", user.FullName)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	hashed, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hashed)
	assert.True(t, strings.HasPrefix(hashed, "$2a$04$"))
	assert.True(t, h.Compare("correct horse", hashed))
	assert.False(t, h.Compare("battery staple", hashed))
	assert.False(t, h.Compare("correct horse", "not-a-bcrypt-hash"))

	again, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again)
}

func TestBcryptHasherCostFallback(t *testing.T) {
	assert.Equal(t, 10, NewBcryptHasher(99).cost)
	assert.Equal(t, 10, NewBcryptHasher(0).cost)
}
