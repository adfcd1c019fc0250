package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	"github.com/noah-isme/logistics-tracker-api/internal/service"
	"github.com/noah-isme/logistics-tracker-api/pkg/response"
)

// NotificationHandler exposes notification and preference endpoints.
type NotificationHandler struct {
	notifications *service.NotificationService
	preferences   *service.PreferenceService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService, preferences *service.PreferenceService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, preferences: preferences}
}

// List godoc
// @Summary List the caller's notifications
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var filter dto.NotificationFilter
	if !bindQuery(c, &filter) {
		return
	}
	response.OK(c, h.notifications.ListForUser(c.Request.Context(), claims.UserID, filter))
}

// Create godoc
// @Summary Send a notification to a user
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.CreateNotificationRequest true "Notification payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if !bindJSON(c, &req, "invalid notification payload") {
		return
	}
	n, err := h.notifications.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, n)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	n, err := h.notifications.MarkRead(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}

// GetPreferences godoc
// @Summary Get notification preferences
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notification-preferences [get]
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	response.OK(c, h.preferences.Get(c.Request.Context(), claims.UserID))
}

// UpdatePreferences godoc
// @Summary Update notification preferences
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body models.NotificationPreferencePatch true "Preference patch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notification-preferences [patch]
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var patch models.NotificationPreferencePatch
	if !bindJSON(c, &patch, "invalid preference payload") {
		return
	}
	pref, err := h.preferences.Update(c.Request.Context(), claims.UserID, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pref)
}
