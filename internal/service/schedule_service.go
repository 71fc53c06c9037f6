package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, int, error)
	ListByStudent(ctx context.Context, studentID, termID string) ([]models.ScheduleEntry, error)
	ListByStudentDay(ctx context.Context, studentID, termID string, day models.Weekday) ([]models.ScheduleEntry, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error)
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
}

type scoreChecker interface {
	HasScore(ctx context.Context, studentID, subjectID string) (bool, error)
}

// CreateScheduleRequest describes payload for creating a schedule entry.
type CreateScheduleRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	TermID       string `json:"term_id" validate:"required"`
	SubjectID    string `json:"subject_id" validate:"required"`
	SubjectName  string `json:"subject_name" validate:"required"`
	DayOfWeek    string `json:"day_of_week" validate:"required"`
	PeriodNumber int    `json:"period_number" validate:"required,min=1"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	ScheduledFor string `json:"scheduled_for" validate:"required"`
}

// UpdateScheduleRequest updates an existing schedule entry.
type UpdateScheduleRequest struct {
	SubjectID    string `json:"subject_id" validate:"required"`
	SubjectName  string `json:"subject_name" validate:"required"`
	DayOfWeek    string `json:"day_of_week" validate:"required"`
	PeriodNumber int    `json:"period_number" validate:"required,min=1"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Completed    bool   `json:"completed"`
}

// ScheduleService coordinates schedule CRUD with pre-insert conflict checks.
type ScheduleService struct {
	repo      scheduleRepository
	scores    scoreChecker
	conflicts *ConflictService
	archive   *ArchiveService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, scores scoreChecker, conflicts *ConflictService, archive *ArchiveService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, scores: scores, conflicts: conflicts, archive: archive, validator: validate, logger: logger}
}

// List returns schedule entries with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule entries")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListByStudent returns a student's entries optionally scoped to a term.
func (s *ScheduleService) ListByStudent(ctx context.Context, studentID, termID string) ([]models.ScheduleEntry, error) {
	entries, err := s.repo.ListByStudent(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student schedule")
	}
	return entries, nil
}

// Create inserts a new entry after validating the payload and running the
// single-entry conflict check against the student's existing day.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	entry, err := s.entryFromCreate(req)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNoConflict(ctx, *entry); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule entry")
	}
	return entry, nil
}

// Update modifies an existing entry, re-running the conflict check.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.With("schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}

	day, err := models.ParseWeekday(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.ErrValidation.With(err.Error())
	}
	if err := validateClockRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	updated := *existing
	updated.SubjectID = req.SubjectID
	updated.SubjectName = req.SubjectName
	updated.DayOfWeek = day
	updated.PeriodNumber = req.PeriodNumber
	updated.StartTime = req.StartTime
	updated.EndTime = req.EndTime
	updated.Completed = req.Completed

	if err := s.ensureNoConflict(ctx, updated); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule entry")
	}
	return &updated, nil
}

// Delete removes an entry unless the deletion rules forbid it: completed
// entries and entries whose subject has a recorded assessment score stay.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound.With("schedule entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}

	hasScore := false
	if s.scores != nil {
		hasScore, err = s.scores.HasScore(ctx, entry.StudentID, entry.SubjectID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assessment scores")
		}
	}

	if s.archive != nil && !s.archive.CanDelete(*entry, hasScore) {
		return appErrors.ErrEntryImmutable
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule entry")
	}
	return nil
}

// Conflicts runs the exhaustive day-scan over a student's term schedule.
func (s *ScheduleService) Conflicts(ctx context.Context, studentID, termID string) (models.ConflictReport, error) {
	entries, err := s.repo.ListByStudent(ctx, studentID, termID)
	if err != nil {
		return models.ConflictReport{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule for conflict scan")
	}
	return s.conflicts.DetectConflicts(entries), nil
}

// Gaps reports expected-but-absent periods for a student's term schedule.
func (s *ScheduleService) Gaps(ctx context.Context, studentID, termID string, expectedPeriods []int) ([]models.ScheduleGap, error) {
	entries, err := s.repo.ListByStudent(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule for gap scan")
	}
	return s.conflicts.FindScheduleGaps(entries, expectedPeriods), nil
}

func (s *ScheduleService) entryFromCreate(req CreateScheduleRequest) (*models.ScheduleEntry, error) {
	day, err := models.ParseWeekday(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.ErrValidation.With(err.Error())
	}
	if err := validateClockRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	scheduledFor, err := time.Parse("2006-01-02", req.ScheduledFor)
	if err != nil {
		return nil, appErrors.ErrValidation.With("scheduled_for must be formatted YYYY-MM-DD")
	}

	return &models.ScheduleEntry{
		StudentID:    req.StudentID,
		TermID:       req.TermID,
		SubjectID:    req.SubjectID,
		SubjectName:  req.SubjectName,
		DayOfWeek:    day,
		PeriodNumber: req.PeriodNumber,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		ScheduledFor: scheduledFor,
	}, nil
}

func (s *ScheduleService) ensureNoConflict(ctx context.Context, entry models.ScheduleEntry) error {
	existing, err := s.repo.ListByStudentDay(ctx, entry.StudentID, entry.TermID, entry.DayOfWeek)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing day entries")
	}
	if conflict := s.conflicts.CheckNewEntry(entry, existing); conflict != nil {
		return appErrors.ErrScheduleConflict.With(conflict.Message)
	}
	return nil
}

func validateClockRange(start, end string) error {
	startMin, err := models.ParseClock(start)
	if err != nil {
		return appErrors.ErrValidation.With(err.Error())
	}
	endMin, err := models.ParseClock(end)
	if err != nil {
		return appErrors.ErrValidation.With(err.Error())
	}
	if endMin <= startMin {
		return appErrors.ErrValidation.With("end_time must be after start_time")
	}
	return nil
}
