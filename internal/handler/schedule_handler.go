package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	"github.com/noah-isme/lms-schedule-api/internal/service"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
	"github.com/noah-isme/lms-schedule-api/pkg/response"
)

// ScheduleHandler exposes schedule endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedule entries
// @Description List schedule entries with filters
// @Tags Schedules
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param termId query string false "Filter by term"
// @Param subjectId query string false "Filter by subject"
// @Param day query string false "Filter by day of week"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var filter models.ScheduleFilter
	filter.StudentID = c.Query("studentId")
	filter.TermID = c.Query("termId")
	filter.SubjectID = c.Query("subjectId")
	if day := c.Query("day"); day != "" {
		parsed, err := models.ParseWeekday(day)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day filter"))
			return
		}
		filter.DayOfWeek = &parsed
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	entries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// StudentSchedule godoc
// @Summary List a student's schedule
// @Description Full weekly schedule for one student, ordered by day and period
// @Tags Schedules
// @Produce json
// @Param id path string true "Student ID"
// @Param termId query string false "Scope to a term"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/schedules [get]
func (h *ScheduleHandler) StudentSchedule(c *gin.Context) {
	entries, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"), c.Query("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Create godoc
// @Summary Create schedule entry
// @Description Create an entry after checking it against the student's existing schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if !bindJSON(c, &req, "invalid schedule payload") {
		return
	}
	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Update godoc
// @Summary Update schedule entry
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body service.UpdateScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateScheduleRequest
	if !bindJSON(c, &req, "invalid schedule payload") {
		return
	}
	entry, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Delete godoc
// @Summary Delete schedule entry
// @Description Delete an entry unless it is completed or a score references it
// @Tags Schedules
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Conflicts godoc
// @Summary Detect schedule conflicts
// @Description Report every conflict in a student's schedule for a term
// @Tags Schedules
// @Produce json
// @Param studentId query string true "Student ID"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/conflicts [get]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	studentID := c.Query("studentId")
	termID := c.Query("termId")
	if studentID == "" || termID == "" {
		response.Error(c, appErrors.ErrValidation.With("studentId and termId are required"))
		return
	}

	report, err := h.service.Conflicts(c.Request.Context(), studentID, termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Gaps godoc
// @Summary Find schedule gaps
// @Description List expected periods with no entry, per day
// @Tags Schedules
// @Produce json
// @Param id path string true "Student ID"
// @Param termId query string true "Term ID"
// @Param periods query string false "Comma-separated expected period numbers"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/schedule-gaps [get]
func (h *ScheduleHandler) Gaps(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.ErrValidation.With("termId is required"))
		return
	}

	periods, err := parsePeriods(c.DefaultQuery("periods", "1,2,3,4,5,6,7,8"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid periods list"))
		return
	}

	gaps, err := h.service.Gaps(c.Request.Context(), c.Param("id"), termID, periods)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gaps, nil)
}

func parsePeriods(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	periods := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		periods = append(periods, n)
	}
	return periods, nil
}
