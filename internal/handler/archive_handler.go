package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	"github.com/noah-isme/lms-schedule-api/internal/service"
	"github.com/noah-isme/lms-schedule-api/pkg/response"
)

// ArchiveHandler exposes the schedule archive and its maintenance sweep.
type ArchiveHandler struct {
	service *service.ArchiveService
}

// NewArchiveHandler constructs an archive handler.
func NewArchiveHandler(svc *service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{service: svc}
}

// Run godoc
// @Summary Run archive sweep
// @Description Move past or completed schedule entries into the archive
// @Tags Maintenance
// @Produce json
// @Param async query bool false "Enqueue the sweep instead of running inline"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /maintenance/archive-run [post]
func (h *ArchiveHandler) Run(c *gin.Context) {
	if async, _ := strconv.ParseBool(c.Query("async")); async {
		if err := h.service.EnqueueRun(); err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusAccepted, gin.H{"enqueued": true}, nil)
		return
	}

	result, err := h.service.Run(c.Request.Context(), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List archived schedule entries
// @Tags Maintenance
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param termId query string false "Filter by term"
// @Param reason query string false "Filter by archive reason"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /archives/schedules [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	var filter models.ArchiveFilter
	filter.StudentID = c.Query("studentId")
	filter.TermID = c.Query("termId")
	if reason := c.Query("reason"); reason != "" {
		filter.Reason = models.ArchiveReason(reason)
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	entries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}
