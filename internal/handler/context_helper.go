package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-schedule-api/internal/middleware"
	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
	"github.com/noah-isme/lms-schedule-api/pkg/response"
)

// bindJSON binds the request body into dest, rendering a validation error on
// failure. Returns false when the handler should stop.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}

// claimsFromContext returns the authenticated caller's claims, or nil on
// routes that skipped the JWT middleware.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	if value, ok := c.Get(middleware.ContextUserKey); ok {
		if claims, ok := value.(*models.JWTClaims); ok {
			return claims
		}
	}
	return nil
}
