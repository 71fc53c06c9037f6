package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	"github.com/noah-isme/lms-schedule-api/internal/service"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
	"github.com/noah-isme/lms-schedule-api/pkg/response"
)

// AssessmentHandler exposes assessment and submission endpoints.
type AssessmentHandler struct {
	service *service.AssessmentService
}

// NewAssessmentHandler constructs an assessment handler.
func NewAssessmentHandler(svc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{service: svc}
}

// List godoc
// @Summary List assessments
// @Description List assessments with filters
// @Tags Assessments
// @Produce json
// @Param termId query string false "Filter by term"
// @Param subjectId query string false "Filter by subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assessments [get]
func (h *AssessmentHandler) List(c *gin.Context) {
	var filter models.AssessmentFilter
	filter.TermID = c.Query("termId")
	filter.SubjectID = c.Query("subjectId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	assessments, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessments, pagination)
}

// Create godoc
// @Summary Create assessment
// @Description Create an assessment with a validated attempt window
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assessments [post]
func (h *AssessmentHandler) Create(c *gin.Context) {
	var req service.CreateAssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	assessment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment)
}

// Submit godoc
// @Summary Submit assessment attempt
// @Description Record the caller's submission while the window or grace period is open
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param payload body service.SubmitAssessmentRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assessments/{id}/submissions [post]
func (h *AssessmentHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitAssessmentRequest
	if !bindJSON(c, &req, "invalid submission payload") {
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), c.Param("id"), claims.UserID, req, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}
