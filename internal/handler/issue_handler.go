package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/service"
	"github.com/noah-isme/logistics-tracker-api/pkg/response"
)

// IssueHandler exposes operational issue endpoints.
type IssueHandler struct {
	issues *service.IssueService
}

// NewIssueHandler constructs IssueHandler.
func NewIssueHandler(issues *service.IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

// List godoc
// @Summary List issues
// @Tags Issues
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	response.OK(c, h.issues.List(c.Request.Context()))
}

// ListActive godoc
// @Summary List active issues
// @Tags Issues
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /issues/active [get]
func (h *IssueHandler) ListActive(c *gin.Context) {
	response.OK(c, h.issues.ListActive(c.Request.Context()))
}

// Get godoc
// @Summary Get issue detail
// @Tags Issues
// @Produce json
// @Param id path int true "Issue ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id} [get]
func (h *IssueHandler) Get(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	issue, err := h.issues.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, issue)
}

// Create godoc
// @Summary Report an issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param payload body dto.CreateIssueRequest true "Issue payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	var req dto.CreateIssueRequest
	if !bindJSON(c, &req, "invalid issue payload") {
		return
	}
	issue, err := h.issues.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issue)
}

// Update godoc
// @Summary Update an issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param id path int true "Issue ID"
// @Param payload body dto.UpdateIssueRequest true "Issue patch"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id} [patch]
func (h *IssueHandler) Update(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateIssueRequest
	if !bindJSON(c, &req, "invalid issue payload") {
		return
	}
	issue, err := h.issues.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, issue)
}
