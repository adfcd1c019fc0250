package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistics-tracker-api/internal/middleware"
	"github.com/noah-isme/logistics-tracker-api/internal/service"
	"github.com/noah-isme/logistics-tracker-api/pkg/response"
)

// AnalyticsHandler serves the stats register and the dashboard summary.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Stats godoc
// @Summary Get the stats register
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	stats, hit := h.analytics.Stats(c.Request.Context())
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ResponseMeta(c))
}

// Refresh godoc
// @Summary Recompute derived rates
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/refresh [post]
func (h *AnalyticsHandler) Refresh(c *gin.Context) {
	response.OK(c, h.analytics.Refresh(c.Request.Context()))
}

// Summary godoc
// @Summary Get the analytics dashboard summary
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, hit := h.analytics.Summary(c.Request.Context())
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ResponseMeta(c))
}
