package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
)

type assessmentRepository interface {
	List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	Create(ctx context.Context, a *models.Assessment) error
	FindSubmission(ctx context.Context, assessmentID, studentID string) (*models.AssessmentSubmission, error)
	CreateSubmission(ctx context.Context, s *models.AssessmentSubmission) error
}

// CreateAssessmentRequest describes payload for creating an assessment.
// GracePeriodMinutes may be omitted, in which case the configured default
// applies; an explicit zero disables the grace period.
type CreateAssessmentRequest struct {
	Title              string `json:"title" validate:"required"`
	SubjectID          string `json:"subject_id" validate:"required"`
	TermID             string `json:"term_id" validate:"required"`
	StartTime          string `json:"start_time" validate:"required"`
	EndTime            string `json:"end_time" validate:"required"`
	GracePeriodMinutes *int   `json:"grace_period_minutes,omitempty"`
}

// SubmitAssessmentRequest carries an attempt submission.
type SubmitAssessmentRequest struct {
	Score *float64 `json:"score,omitempty" validate:"omitempty,min=0,max=100"`
}

// AssessmentService manages assessments and guards submissions with the
// window rules: no submission before the window opens and none after the
// grace period closes.
type AssessmentService struct {
	repo         assessmentRepository
	windows      *WindowService
	defaultGrace time.Duration
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAssessmentService instantiates AssessmentService. defaultGrace seeds the
// grace period of assessments created without an explicit one.
func NewAssessmentService(repo assessmentRepository, windows *WindowService, defaultGrace time.Duration, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{repo: repo, windows: windows, defaultGrace: defaultGrace, validator: validate, logger: logger}
}

// List returns assessments with pagination metadata.
func (s *AssessmentService) List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, *models.Pagination, error) {
	assessments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return assessments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one assessment.
func (s *AssessmentService) Get(ctx context.Context, id string) (*models.Assessment, error) {
	assessment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.With("assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	return assessment, nil
}

// Create inserts a new assessment after validating its window configuration.
func (s *AssessmentService) Create(ctx context.Context, req CreateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}

	grace := int(s.defaultGrace.Minutes())
	if req.GracePeriodMinutes != nil {
		grace = *req.GracePeriodMinutes
	}

	report := s.windows.ValidateWindowConfig(req.StartTime, req.EndTime, grace)
	if !report.Valid {
		return nil, appErrors.ErrValidation.With(strings.Join(report.Violations, "; "))
	}

	start, _ := time.Parse(time.RFC3339, req.StartTime)
	end, _ := time.Parse(time.RFC3339, req.EndTime)

	assessment := models.Assessment{
		Title:              req.Title,
		SubjectID:          req.SubjectID,
		TermID:             req.TermID,
		StartTime:          start,
		EndTime:            end,
		GracePeriodMinutes: grace,
	}
	if err := s.repo.Create(ctx, &assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}
	return &assessment, nil
}

// Submit records a student's attempt. Submission is accepted only while the
// window or its grace period is open, and only once per student.
func (s *AssessmentService) Submit(ctx context.Context, assessmentID, studentID string, req SubmitAssessmentRequest, now time.Time) (*models.AssessmentSubmission, error) {
	if studentID == "" {
		return nil, appErrors.ErrValidation.With("student id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	assessment, err := s.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindSubmission(ctx, assessmentID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if existing != nil {
		return nil, appErrors.ErrConflict.With("assessment already submitted")
	}

	switch s.windows.Evaluate(assessment.Window(), now).State {
	case models.WindowNotStarted:
		return nil, appErrors.ErrWindowNotOpen
	case models.WindowExpired:
		return nil, appErrors.ErrWindowClosed
	}

	submission := models.AssessmentSubmission{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		SubmittedAt:  now,
		Score:        req.Score,
	}
	if err := s.repo.CreateSubmission(ctx, &submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record submission")
	}
	return &submission, nil
}
