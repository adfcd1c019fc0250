package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
	"github.com/noah-isme/logistics-tracker-api/pkg/response"
)

// ContextUserKey is the gin context key storing the resolved session claims.
const ContextUserKey = "currentUser"

// SessionResolver maps a session id to the identity it belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*models.SessionClaims, error)
}

// SessionCookie describes the cookie carrying the session id.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Session protects routes by requiring a live session cookie.
func Session(resolver SessionResolver, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookie.Name)
		if err != nil || sessionID == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		claims, err := resolver.Resolve(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, appErrors.ErrSessionExpired) {
				ClearSessionCookie(c, cookie)
			}
			response.Error(c, err)
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// OptionalSession attaches claims when a valid session is present but does not block.
func OptionalSession(resolver SessionResolver, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID, err := c.Cookie(cookie.Name); err == nil && sessionID != "" {
			if claims, err := resolver.Resolve(c.Request.Context(), sessionID); err == nil {
				c.Set(ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

// ClaimsFrom returns the session claims stored on the context, or nil.
func ClaimsFrom(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// SetSessionCookie writes an HttpOnly session cookie living for maxAge seconds.
func SetSessionCookie(c *gin.Context, cookie SessionCookie, sessionID string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, sessionID, maxAge, "/", "", cookie.Secure, true)
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c *gin.Context, cookie SessionCookie) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, "", -1, "/", "", cookie.Secure, true)
}
