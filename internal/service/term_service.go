package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
)

type termRepository interface {
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, int, error)
	FindByID(ctx context.Context, id string) (*models.Term, error)
	FindActive(ctx context.Context) (*models.Term, error)
	Create(ctx context.Context, term *models.Term) error
	Update(ctx context.Context, term *models.Term) error
}

// CreateTermRequest describes payload for creating a term.
type CreateTermRequest struct {
	Name         string `json:"name" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
	StartDate    string `json:"start_date" validate:"required"`
	EndDate      string `json:"end_date" validate:"required"`
	IsActive     bool   `json:"is_active"`
}

// UpdateTermRequest describes payload for updating a term.
type UpdateTermRequest struct {
	Name         string `json:"name" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
	StartDate    string `json:"start_date" validate:"required"`
	EndDate      string `json:"end_date" validate:"required"`
	IsActive     bool   `json:"is_active"`
}

// TermService coordinates term CRUD and week derivation.
type TermService struct {
	repo      termRepository
	weeks     *WeekService
	cache     *CacheService
	weeksTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService instantiates TermService. weeksTTL bounds how long derived
// week spans stay cached; non-positive falls back to the cache default.
func NewTermService(repo termRepository, weeks *WeekService, cache *CacheService, weeksTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, weeks: weeks, cache: cache, weeksTTL: weeksTTL, validator: validate, logger: logger}
}

// List returns terms with pagination metadata.
func (s *TermService) List(ctx context.Context, filter models.TermFilter) ([]models.Term, *models.Pagination, error) {
	terms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return terms, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one term.
func (s *TermService) Get(ctx context.Context, id string) (*models.Term, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.With("term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

// Create inserts a new term after validating its date range.
func (s *TermService) Create(ctx context.Context, req CreateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.ErrValidation.With("start_date must be formatted YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.ErrValidation.With("end_date must be formatted YYYY-MM-DD")
	}
	if !end.After(start) {
		return nil, appErrors.ErrValidation.With("end_date must be after start_date")
	}

	term := models.Term{
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		StartDate:    start,
		EndDate:      end,
		IsActive:     req.IsActive,
	}
	if err := s.repo.Create(ctx, &term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create term")
	}
	return &term, nil
}

// Active resolves the currently active term.
func (s *TermService) Active(ctx context.Context) (*models.Term, error) {
	term, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.With("no active term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
	}
	return term, nil
}

// Update modifies a term's dates and flags, then drops the term's cached week
// spans so stale boundaries are never served.
func (s *TermService) Update(ctx context.Context, id string, req UpdateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.ErrValidation.With("start_date must be formatted YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.ErrValidation.With("end_date must be formatted YYYY-MM-DD")
	}
	if !end.After(start) {
		return nil, appErrors.ErrValidation.With("end_date must be after start_date")
	}

	updated := *existing
	updated.Name = req.Name
	updated.AcademicYear = req.AcademicYear
	updated.StartDate = start
	updated.EndDate = end
	updated.IsActive = req.IsActive

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update term")
	}

	s.invalidateWeeks(ctx, id)
	return &updated, nil
}

func (s *TermService) invalidateWeeks(ctx context.Context, termID string) {
	if !s.cache.Enabled() {
		return
	}
	pattern := fmt.Sprintf("term:weeks:%s:*", termID)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate term weeks", zap.String("term_id", termID), zap.Error(err))
	}
}

// Weeks expands a term into its week spans, cached per term and day.
func (s *TermService) Weeks(ctx context.Context, termID string, now time.Time) ([]models.WeekInfo, bool, error) {
	term, err := s.Get(ctx, termID)
	if err != nil {
		return nil, false, err
	}

	// Relative flags shift at midnight, so the cache key includes the date.
	cacheKey := fmt.Sprintf("term:weeks:%s:%s", termID, now.Format("2006-01-02"))
	if s.cache.Enabled() {
		var cached []models.WeekInfo
		hit, cerr := s.cache.Get(ctx, cacheKey, &cached)
		if cerr == nil && hit {
			return cached, true, nil
		}
	}

	weeks, err := s.weeks.TermWeeks(*term, now)
	if err != nil {
		return nil, false, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, weeks, s.weeksTTL); err != nil {
			s.logger.Warn("failed to cache term weeks", zap.String("term_id", termID), zap.Error(err))
		}
	}
	return weeks, false, nil
}

// CurrentWeek resolves the week info containing the given date.
func (s *TermService) CurrentWeek(ctx context.Context, termID string, date time.Time) (*models.WeekInfo, error) {
	term, err := s.Get(ctx, termID)
	if err != nil {
		return nil, err
	}

	number := s.weeks.WeekNumber(date, term.StartDate)
	if number < 1 || number > s.weeks.TotalWeeks(term.StartDate, term.EndDate) {
		return nil, appErrors.ErrOutsideTerm.With("date falls outside the term")
	}

	info, err := s.weeks.WeekDates(number, term.StartDate, date)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
