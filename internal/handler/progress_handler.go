package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-schedule-api/internal/service"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
	"github.com/noah-isme/lms-schedule-api/pkg/response"
)

// ProgressHandler exposes student progress endpoints.
type ProgressHandler struct {
	service *service.ProgressService
	export  *service.ExportService
}

// NewProgressHandler constructs a progress handler.
func NewProgressHandler(svc *service.ProgressService, exportSvc *service.ExportService) *ProgressHandler {
	return &ProgressHandler{service: svc, export: exportSvc}
}

// Summary godoc
// @Summary Get student progress summary
// @Description Aggregate per-subject completion, grade band and streak for a term
// @Tags Progress
// @Produce json
// @Param id path string true "Student ID"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/progress [get]
func (h *ProgressHandler) Summary(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.ErrValidation.With("termId is required"))
		return
	}

	summary, cached, err := h.service.Summary(c.Request.Context(), c.Param("id"), termID, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cached": cached})
}

// Record godoc
// @Summary Record lesson progress
// @Description Insert a lesson progress entry and refresh cached summaries
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body service.RecordProgressRequest true "Progress payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /progress [post]
func (h *ProgressHandler) Record(c *gin.Context) {
	var req service.RecordProgressRequest
	if !bindJSON(c, &req, "invalid progress payload") {
		return
	}
	record, err := h.service.Record(c.Request.Context(), req, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Complete godoc
// @Summary Complete lesson progress
// @Description Mark a progress record completed with an optional score
// @Tags Progress
// @Accept json
// @Produce json
// @Param id path string true "Progress record ID"
// @Param payload body service.CompleteProgressRequest true "Completion payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /progress/{id}/complete [patch]
func (h *ProgressHandler) Complete(c *gin.Context) {
	var req service.CompleteProgressRequest
	if !bindJSON(c, &req, "invalid progress payload") {
		return
	}
	record, err := h.service.Complete(c.Request.Context(), c.Param("id"), req, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Export godoc
// @Summary Export student progress report
// @Description Render the progress summary as a CSV or PDF download
// @Tags Progress
// @Produce octet-stream
// @Param id path string true "Student ID"
// @Param termId query string true "Term ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /students/{id}/progress/export [get]
func (h *ProgressHandler) Export(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.ErrValidation.With("termId is required"))
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.export.ProgressReport(c.Request.Context(), c.Param("id"), termID, format, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
