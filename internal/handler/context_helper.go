package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistics-tracker-api/internal/middleware"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
	"github.com/noah-isme/logistics-tracker-api/pkg/response"
)

// requireClaims writes a 401 and returns false when no session is attached.
func requireClaims(c *gin.Context) (models.SessionClaims, bool) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.SessionClaims{}, false
	}
	return *claims, true
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

// intParam parses a positive integer path parameter, writing a 400 on failure.
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return false
	}
	return true
}
