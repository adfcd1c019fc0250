package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/service"
	"github.com/noah-isme/logistics-tracker-api/pkg/response"
)

// ParcelHandler exposes parcel endpoints.
type ParcelHandler struct {
	parcels *service.ParcelService
}

// NewParcelHandler constructs ParcelHandler.
func NewParcelHandler(parcels *service.ParcelService) *ParcelHandler {
	return &ParcelHandler{parcels: parcels}
}

// List godoc
// @Summary List parcels
// @Description Senders see their own parcels, staff and admins see all of them.
// @Tags Parcels
// @Produce json
// @Param status query string false "Filter by status"
// @Param transportMode query string false "Filter by transport mode"
// @Param q query string false "Search tracking number, origin or destination"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /parcels [get]
func (h *ParcelHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var filter dto.ParcelFilter
	if !bindQuery(c, &filter) {
		return
	}
	parcels, pagination, err := h.parcels.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parcels, pagination)
}

// Get godoc
// @Summary Get parcel detail
// @Tags Parcels
// @Produce json
// @Param id path int true "Parcel ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parcels/{id} [get]
func (h *ParcelHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	parcel, err := h.parcels.Get(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, parcel)
}

// Track godoc
// @Summary Track a parcel by tracking number
// @Tags Parcels
// @Produce json
// @Param trackingNumber path string true "Tracking number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parcels/track/{trackingNumber} [get]
func (h *ParcelHandler) Track(c *gin.Context) {
	view, err := h.parcels.Track(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Create godoc
// @Summary Register a parcel
// @Tags Parcels
// @Accept json
// @Produce json
// @Param payload body dto.CreateParcelRequest true "Parcel payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /parcels [post]
func (h *ParcelHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateParcelRequest
	if !bindJSON(c, &req, "invalid parcel payload") {
		return
	}
	parcel, err := h.parcels.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, parcel)
}

// Update godoc
// @Summary Update a parcel
// @Description Status changes notify the parcel owner.
// @Tags Parcels
// @Accept json
// @Produce json
// @Param id path int true "Parcel ID"
// @Param payload body dto.UpdateParcelRequest true "Parcel patch"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parcels/{id} [patch]
func (h *ParcelHandler) Update(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateParcelRequest
	if !bindJSON(c, &req, "invalid parcel payload") {
		return
	}
	parcel, err := h.parcels.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, parcel)
}

// Delete godoc
// @Summary Delete a parcel
// @Tags Parcels
// @Param id path int true "Parcel ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parcels/{id} [delete]
func (h *ParcelHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.parcels.Delete(c.Request.Context(), claims, id, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a parcel manifest
// @Tags Parcels
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param status query string false "Filter by status"
// @Param transportMode query string false "Filter by transport mode"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /parcels/export [get]
func (h *ParcelHandler) Export(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var filter dto.ParcelFilter
	if !bindQuery(c, &filter) {
		return
	}
	result, err := h.parcels.Export(c.Request.Context(), claims, filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

// IssueTrackingLink godoc
// @Summary Issue a public tracking link
// @Tags Parcels
// @Produce json
// @Param id path int true "Parcel ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parcels/{id}/tracking-link [post]
func (h *ParcelHandler) IssueTrackingLink(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	link, err := h.parcels.IssueTrackingLink(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// PublicTrack godoc
// @Summary Follow a public tracking link
// @Tags Parcels
// @Produce json
// @Param token path string true "Signed tracking token"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /track/{token} [get]
func (h *ParcelHandler) PublicTrack(c *gin.Context) {
	view, err := h.parcels.ResolveTrackingLink(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}
