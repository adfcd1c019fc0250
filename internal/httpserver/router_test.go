package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/handler"
	"github.com/noah-isme/logistics-tracker-api/internal/middleware"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	"github.com/noah-isme/logistics-tracker-api/internal/repository"
	"github.com/noah-isme/logistics-tracker-api/internal/service"
	"github.com/noah-isme/logistics-tracker-api/pkg/notify"
	"github.com/noah-isme/logistics-tracker-api/pkg/signing"
)

type capturingSender struct {
	deliveries []notify.Delivery
}

func (s *capturingSender) Send(_ context.Context, d notify.Delivery) error {
	s.deliveries = append(s.deliveries, d)
	return nil
}

func (s *capturingSender) Close() error { return nil }

type testAPI struct {
	router *gin.Engine
	store  *repository.Storage
	hasher *service.BcryptHasher
	sender *capturingSender
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *struct{ Code string } `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func newTestAPI(t *testing.T, checks map[string]handler.ReadinessCheck) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	validate := validator.New()
	metrics := service.NewMetricsService()
	store := repository.NewStorage(logger, metrics)
	hasher := service.NewBcryptHasher(4)
	sender := &capturingSender{}

	cacheSvc := service.NewCacheService(nil, metrics, time.Minute, logger, false)
	authSvc := service.NewAuthService(store, repository.NewMemorySessionRepository(), hasher, nil, validate, logger, service.AuthConfig{SessionTTL: time.Hour})
	notificationSvc := service.NewNotificationService(store, sender, metrics, validate, logger)
	parcelSvc := service.NewParcelService(service.ParcelServiceParams{
		Store:    store,
		Notifier: notificationSvc,
		Cache:    cacheSvc,
		Signer:   signing.NewTrackingLinkSigner("test-secret", time.Hour),
		Logger:   logger,
		Config:   service.ParcelServiceConfig{TrackingURLPrefix: "/api/v1/track/"},
	})

	cookie := middleware.SessionCookie{Name: "sid"}
	router := NewRouter(Handlers{
		Auth:          handler.NewAuthHandler(authSvc, cookie, time.Hour),
		Users:         handler.NewUserHandler(service.NewUserService(store, nil, validate, logger), service.NewAuditService(nil, validate)),
		Parcels:       handler.NewParcelHandler(parcelSvc),
		Routes:        handler.NewRouteHandler(service.NewRouteService(store, cacheSvc, validate, logger)),
		Notifications: handler.NewNotificationHandler(notificationSvc, service.NewPreferenceService(store, validate, logger)),
		Issues:        handler.NewIssueHandler(service.NewIssueService(store, cacheSvc, validate, logger)),
		Analytics:     handler.NewAnalyticsHandler(service.NewAnalyticsService(store, cacheSvc, metrics, logger, time.Minute)),
		Metrics:       handler.NewMetricsHandler(metrics, checks),
	}, Options{
		Logger:   logger,
		Metrics:  metrics,
		Sessions: authSvc,
		Cookie:   cookie,
	})

	return &testAPI{router: router, store: store, hasher: hasher, sender: sender}
}

func (a *testAPI) do(t *testing.T, method, path, session string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: session})
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) createUser(t *testing.T, username string, role models.UserRole) {
	t.Helper()
	hashed, err := a.hasher.Hash("secret123")
	require.NoError(t, err)
	user, err := a.store.CreateUser(models.UserInput{Username: username, Password: hashed, Email: username + "@example.com", FullName: username, Role: role})
	require.NoError(t, err)
	a.store.CreatePreference(models.DefaultNotificationPreference(user.ID))
}

func (a *testAPI) login(t *testing.T, username string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			assert.True(t, c.HttpOnly)
			return c.Value
		}
	}
	t.Fatalf("login did not set a session cookie")
	return ""
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env
}

func TestRegisterLoginAndMe(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "sender1", "password": "secret123", "email": "sender1@example.com", "fullName": "First Sender",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var info models.UserInfo
	decode(t, rec, &info)
	assert.Equal(t, models.RoleSender, info.Role)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "sender1", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sessionId")

	session := api.login(t, "sender1")
	rec = api.do(t, http.MethodGet, "/api/v1/auth/me", session, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	decode(t, rec, &me)
	assert.Equal(t, "sender1", me.Username)
	assert.NotContains(t, rec.Body.String(), "secret123")

	rec = api.do(t, http.MethodPost, "/api/v1/auth/logout", session, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/v1/auth/me", session, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createUser(t, "staff1", models.RoleStaff)

	wrong := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "staff1", "password": "nope"})
	unknown := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "ghost", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Empty(t, wrong.Result().Cookies())
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, path := range []string{"/api/v1/parcels", "/api/v1/notifications", "/api/v1/stats", "/api/v1/issues"} {
		rec := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestParcelLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createUser(t, "owner", models.RoleSender)
	api.createUser(t, "other", models.RoleSender)
	api.createUser(t, "staff", models.RoleStaff)
	owner := api.login(t, "owner")
	other := api.login(t, "other")
	staff := api.login(t, "staff")

	rec := api.do(t, http.MethodPost, "/api/v1/parcels", owner, map[string]interface{}{
		"origin": "Rotterdam", "destination": "Berlin", "transportMode": "road", "weight": 12.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var parcel models.Parcel
	decode(t, rec, &parcel)
	assert.Equal(t, models.ParcelStatusPreparing, parcel.Status)
	require.NotEmpty(t, parcel.TrackingNumber)
	parcelPath := "/api/v1/parcels/" + itoa(parcel.ID)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, parcelPath, other, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, parcelPath, staff, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPatch, parcelPath, owner, map[string]string{"status": "in_transit"}).Code)

	rec = api.do(t, http.MethodPatch, parcelPath, staff, map[string]string{"status": "delayed", "delayReason": "storm warning"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, api.sender.deliveries, 1)
	assert.Equal(t, "delay", api.sender.deliveries[0].Type)

	rec = api.do(t, http.MethodGet, "/api/v1/notifications", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []models.Notification
	decode(t, rec, &notifications)
	require.Len(t, notifications, 1)
	readPath := "/api/v1/notifications/" + itoa(notifications[0].ID) + "/read"
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodPost, readPath, other, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodPost, readPath, owner, nil).Code)

	rec = api.do(t, http.MethodGet, "/api/v1/stats", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.Stats
	env := decode(t, rec, &stats)
	assert.Equal(t, 1, stats.ActiveParcels)
	assert.Equal(t, 1, stats.DelayedParcels)
	assert.Equal(t, false, env.Meta["cacheHit"])

	rec = api.do(t, http.MethodGet, "/api/v1/parcels/track/"+strings.ToLower(parcel.TrackingNumber), other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"userId"`)

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodDelete, parcelPath, owner, nil).Code)
	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, parcelPath, staff, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, parcelPath, staff, nil).Code)
}

func TestParcelListAndExport(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createUser(t, "owner", models.RoleSender)
	owner := api.login(t, "owner")
	for _, dest := range []string{"Berlin", "Paris", "Madrid"} {
		rec := api.do(t, http.MethodPost, "/api/v1/parcels", owner, map[string]interface{}{
			"origin": "Rotterdam", "destination": dest, "transportMode": "rail", "weight": 3,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := api.do(t, http.MethodGet, "/api/v1/parcels?pageSize=2", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var parcels []models.Parcel
	env := decode(t, rec, &parcels)
	assert.Len(t, parcels, 2)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 3, env.Pagination.TotalCount)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/v1/parcels?status=lost", owner, nil).Code)

	rec = api.do(t, http.MethodGet, "/api/v1/parcels/export?format=csv&q=paris", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "Paris")
	assert.NotContains(t, rec.Body.String(), "Madrid")

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/v1/parcels/export?format=xlsx", owner, nil).Code)
}

func TestPublicTrackingLink(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createUser(t, "owner", models.RoleSender)
	owner := api.login(t, "owner")
	rec := api.do(t, http.MethodPost, "/api/v1/parcels", owner, map[string]interface{}{
		"origin": "Lyon", "destination": "Milan", "transportMode": "road", "weight": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var parcel models.Parcel
	decode(t, rec, &parcel)

	rec = api.do(t, http.MethodPost, "/api/v1/parcels/"+itoa(parcel.ID)+"/tracking-link", owner, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var link struct{ URL string }
	decode(t, rec, &link)
	require.True(t, strings.HasPrefix(link.URL, "/api/v1/track/"))

	rec = api.do(t, http.MethodGet, link.URL, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), parcel.TrackingNumber)

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/api/v1/track/tampered", "", nil).Code)
}

func TestRoutesAndOptions(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createUser(t, "owner", models.RoleSender)
	api.createUser(t, "staff", models.RoleStaff)
	owner := api.login(t, "owner")
	staff := api.login(t, "staff")
	rec := api.do(t, http.MethodPost, "/api/v1/parcels", owner, map[string]interface{}{
		"origin": "Hamburg", "destination": "Vienna", "transportMode": "road", "weight": 40,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var parcel models.Parcel
	decode(t, rec, &parcel)

	route := map[string]interface{}{
		"parcelId":      parcel.ID,
		"transportMode": "rail",
		"distance":      950,
		"duration":      720,
		"routePath": []map[string]interface{}{
			{"name": "Hamburg", "lat": 53.55, "lng": 9.99},
			{"name": "Vienna", "lat": 48.21, "lng": 16.37},
		},
	}
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, "/api/v1/routes", owner, route).Code)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/v1/routes", staff, route).Code)

	rec = api.do(t, http.MethodGet, "/api/v1/parcels/"+itoa(parcel.ID)+"/route", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/parcels/"+itoa(parcel.ID)+"/route-options", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var options []struct {
		TransportMode string
		Distance      float64
		Recommended   bool
	}
	decode(t, rec, &options)
	require.Len(t, options, 4)
	recommended := 0
	for _, o := range options {
		if o.Recommended {
			recommended++
		}
	}
	assert.Equal(t, 1, recommended)

	rec = api.do(t, http.MethodGet, "/api/v1/routes/active", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var active []models.Route
	decode(t, rec, &active)
	assert.Len(t, active, 1)
}

func TestIssuesAndAnalytics(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createUser(t, "staff", models.RoleStaff)
	api.createUser(t, "owner", models.RoleSender)
	staff := api.login(t, "staff")
	owner := api.login(t, "owner")

	issue := map[string]interface{}{
		"title": "Snow on A7", "description": "Closures expected", "severity": "high", "issueType": "weather",
	}
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, "/api/v1/issues", owner, issue).Code)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/v1/issues", staff, issue).Code)

	rec := api.do(t, http.MethodGet, "/api/v1/issues/active", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var issues []models.Issue
	decode(t, rec, &issues)
	require.Len(t, issues, 1)

	rec = api.do(t, http.MethodPatch, "/api/v1/issues/"+itoa(issues[0].ID), staff, map[string]string{"status": "resolved"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/v1/issues/active", owner, nil)
	decode(t, rec, &issues)
	assert.Empty(t, issues)

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/api/v1/analytics/summary", owner, nil).Code)
	rec = api.do(t, http.MethodGet, "/api/v1/analytics/summary", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"byStatus"`)

	rec = api.do(t, http.MethodPost, "/api/v1/stats/refresh", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.Stats
	decode(t, rec, &stats)
	assert.Equal(t, "0%", stats.OnTimeRate)
}

func TestPreferencesAndNotifications(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createUser(t, "owner", models.RoleSender)
	api.createUser(t, "staff", models.RoleStaff)
	owner := api.login(t, "owner")
	staff := api.login(t, "staff")

	rec := api.do(t, http.MethodPatch, "/api/v1/notification-preferences", owner, map[string]interface{}{"frequency": "weekly"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPatch, "/api/v1/notification-preferences", owner, map[string]interface{}{"smsEnabled": true})
	require.Equal(t, http.StatusOK, rec.Code)
	var pref models.NotificationPreference
	decode(t, rec, &pref)
	assert.True(t, pref.SMSEnabled)

	rec = api.do(t, http.MethodPost, "/api/v1/parcels", owner, map[string]interface{}{
		"origin": "Oslo", "destination": "Bergen", "transportMode": "rail", "weight": 1,
	})
	var parcel models.Parcel
	decode(t, rec, &parcel)

	payload := map[string]interface{}{"userId": parcel.UserID, "parcelId": parcel.ID, "type": "weather", "message": "Storm ahead", "channel": "sms"}
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, "/api/v1/notifications", owner, payload).Code)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/v1/notifications", staff, payload).Code)

	rec = api.do(t, http.MethodGet, "/api/v1/notifications?unread=true", owner, nil)
	var notifications []models.Notification
	decode(t, rec, &notifications)
	assert.Len(t, notifications, 1)
}

func TestUserAdministration(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createUser(t, "admin", models.RoleAdmin)
	api.createUser(t, "owner", models.RoleSender)
	admin := api.login(t, "admin")
	owner := api.login(t, "owner")

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/api/v1/users", owner, nil).Code)
	rec := api.do(t, http.MethodGet, "/api/v1/users?role=sender", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []models.User
	decode(t, rec, &users)
	require.Len(t, users, 1)
	ownerPath := "/api/v1/users/" + itoa(users[0].ID)

	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, ownerPath, owner, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPatch, ownerPath+"/role", owner, map[string]string{"role": "admin"}).Code)
	rec = api.do(t, http.MethodPatch, ownerPath+"/role", admin, map[string]string{"role": "staff"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "newstaff", "password": "secret123", "email": "ns@example.com", "fullName": "New Staff", "role": "staff",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(t, http.MethodPost, "/api/v1/auth/register", admin, map[string]string{
		"username": "newstaff", "password": "secret123", "email": "ns@example.com", "fullName": "New Staff", "role": "staff",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/v1/audit-logs", admin, nil).Code)
}

func TestOpsEndpoints(t *testing.T) {
	healthy := newTestAPI(t, map[string]handler.ReadinessCheck{"redis": func(context.Context) error { return nil }})
	assert.Equal(t, http.StatusOK, healthy.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, healthy.do(t, http.MethodGet, "/ready", "", nil).Code)

	rec := healthy.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logistics_active_parcels")

	broken := newTestAPI(t, map[string]handler.ReadinessCheck{"postgres": func(context.Context) error { return errors.New("connection refused") }})
	rec = broken.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
