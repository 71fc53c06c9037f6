package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-schedule-api/internal/service"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
	"github.com/noah-isme/lms-schedule-api/pkg/response"
)

// AccessHandler exposes assessment window checks.
type AccessHandler struct {
	service *service.WindowService
}

// NewAccessHandler constructs an access handler.
func NewAccessHandler(svc *service.WindowService) *AccessHandler {
	return &AccessHandler{service: svc}
}

// ValidateWindowRequest is the payload for validating a window configuration.
type ValidateWindowRequest struct {
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	GracePeriodMinutes int    `json:"grace_period_minutes"`
}

// CheckAccess godoc
// @Summary Check assessment access
// @Description Decide whether the caller may open an assessment right now
// @Tags Assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Param studentId query string false "Student ID (defaults to caller)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assessments/{id}/access [get]
func (h *AccessHandler) CheckAccess(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		claims := claimsFromContext(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		studentID = claims.UserID
	}

	decision, err := h.service.CheckAccess(c.Request.Context(), c.Param("id"), studentID, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision, nil)
}

// ValidateWindow godoc
// @Summary Validate window configuration
// @Description Report every violation in a proposed assessment window
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body ValidateWindowRequest true "Window payload"
// @Success 200 {object} response.Envelope
// @Router /windows/validate [post]
func (h *AccessHandler) ValidateWindow(c *gin.Context) {
	var req ValidateWindowRequest
	if !bindJSON(c, &req, "invalid window payload") {
		return
	}

	report := h.service.ValidateWindowConfig(req.StartTime, req.EndTime, req.GracePeriodMinutes)
	response.JSON(c, http.StatusOK, report, nil)
}
