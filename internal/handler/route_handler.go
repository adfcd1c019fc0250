package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/service"
	"github.com/noah-isme/logistics-tracker-api/pkg/response"
)

// RouteHandler exposes route planning endpoints.
type RouteHandler struct {
	routes *service.RouteService
}

// NewRouteHandler constructs RouteHandler.
func NewRouteHandler(routes *service.RouteService) *RouteHandler {
	return &RouteHandler{routes: routes}
}

// List godoc
// @Summary List routes
// @Tags Routes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /routes [get]
func (h *RouteHandler) List(c *gin.Context) {
	response.OK(c, h.routes.List(c.Request.Context()))
}

// ListActive godoc
// @Summary List active routes
// @Tags Routes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /routes/active [get]
func (h *RouteHandler) ListActive(c *gin.Context) {
	response.OK(c, h.routes.ListActive(c.Request.Context()))
}

// GetByParcel godoc
// @Summary Get the current route of a parcel
// @Tags Routes
// @Produce json
// @Param id path int true "Parcel ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parcels/{id}/route [get]
func (h *RouteHandler) GetByParcel(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	route, err := h.routes.GetByParcel(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, route)
}

// Options godoc
// @Summary Compare transport options for a parcel
// @Tags Routes
// @Produce json
// @Param id path int true "Parcel ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parcels/{id}/route-options [get]
func (h *RouteHandler) Options(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	options, err := h.routes.Options(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, options)
}

// Create godoc
// @Summary Plan a route
// @Tags Routes
// @Accept json
// @Produce json
// @Param payload body dto.CreateRouteRequest true "Route payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /routes [post]
func (h *RouteHandler) Create(c *gin.Context) {
	var req dto.CreateRouteRequest
	if !bindJSON(c, &req, "invalid route payload") {
		return
	}
	route, err := h.routes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, route)
}

// Update godoc
// @Summary Update a route
// @Tags Routes
// @Accept json
// @Produce json
// @Param id path int true "Route ID"
// @Param payload body dto.UpdateRouteRequest true "Route patch"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /routes/{id} [patch]
func (h *RouteHandler) Update(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRouteRequest
	if !bindJSON(c, &req, "invalid route payload") {
		return
	}
	route, err := h.routes.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, route)
}
