package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
)

type progressRepository interface {
	ListByFilter(ctx context.Context, filter models.ProgressFilter) ([]models.LessonProgress, error)
	Create(ctx context.Context, p *models.LessonProgress) error
	MarkCompleted(ctx context.Context, id string, score *float64, completedAt time.Time) (*models.LessonProgress, error)
}

// RecordProgressRequest describes payload for recording a lesson progress entry.
type RecordProgressRequest struct {
	StudentID  string   `json:"student_id" validate:"required"`
	SubjectID  string   `json:"subject_id" validate:"required"`
	TermID     string   `json:"term_id" validate:"required"`
	LessonDate string   `json:"lesson_date" validate:"required"`
	Completed  bool     `json:"completed"`
	Score      *float64 `json:"score,omitempty" validate:"omitempty,min=0,max=100"`
}

// CompleteProgressRequest marks an existing record completed.
type CompleteProgressRequest struct {
	Score *float64 `json:"score,omitempty" validate:"omitempty,min=0,max=100"`
}

// ProgressService derives completion rates, grade bands and streaks from
// lesson progress collections. The calculators are pure reductions; Summary,
// Record and Complete touch persistence.
type ProgressService struct {
	repo      progressRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgressService constructs a ProgressService.
func NewProgressService(repo progressRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProgressService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// CompletionRate returns the rounded percentage of completed items, 0 when
// total is zero.
func (s *ProgressService) CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// WeightedAverage computes sum(v*w)/sum(w), 0 on empty or zero-weight input.
func (s *ProgressService) WeightedAverage(values, weights []float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	var weightedSum, weightTotal float64
	for i, v := range values {
		weightedSum += v * weights[i]
		weightTotal += weights[i]
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

// GradeBand maps a percentage to its letter band.
func (s *ProgressService) GradeBand(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	case percentage >= 50:
		return "E"
	default:
		return "F"
	}
}

// Streak counts consecutive completed lesson days walking backward from the
// most recent record, stopping at the first incompletion.
func (s *ProgressService) Streak(records []models.LessonProgress) int {
	if len(records) == 0 {
		return 0
	}
	sorted := make([]models.LessonProgress, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessonDate.After(sorted[j].LessonDate)
	})

	streak := 0
	for _, record := range sorted {
		if !record.Completed {
			break
		}
		streak++
	}
	return streak
}

// Summary aggregates a student's term progress, with cache read-through when
// caching is enabled.
func (s *ProgressService) Summary(ctx context.Context, studentID, termID string, now time.Time) (*models.ProgressSummary, bool, error) {
	if studentID == "" || termID == "" {
		return nil, false, appErrors.ErrValidation.With("studentId and termId are required")
	}

	cacheKey := fmt.Sprintf("progress:summary:%s:%s", studentID, termID)
	if s.cache.Enabled() {
		var cached models.ProgressSummary
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	records, err := s.repo.ListByFilter(ctx, models.ProgressFilter{StudentID: studentID, TermID: termID})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson progress")
	}

	summary := s.buildSummary(studentID, termID, records, now)

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, summary, 0); err != nil {
			s.logger.Warn("failed to cache progress summary", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return summary, false, nil
}

// Record inserts a lesson progress entry and invalidates the student's cached
// summaries so the next read reflects the write.
func (s *ProgressService) Record(ctx context.Context, req RecordProgressRequest, now time.Time) (*models.LessonProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}
	lessonDate, err := time.Parse("2006-01-02", req.LessonDate)
	if err != nil {
		return nil, appErrors.ErrValidation.With("lesson_date must be formatted YYYY-MM-DD")
	}

	record := models.LessonProgress{
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		TermID:     req.TermID,
		LessonDate: lessonDate,
		Completed:  req.Completed,
		Score:      req.Score,
	}
	if req.Completed {
		completedAt := now
		record.CompletedAt = &completedAt
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record lesson progress")
	}

	s.invalidateSummaries(ctx, record.StudentID)
	return &record, nil
}

// Complete marks a record completed and invalidates the student's cached
// summaries.
func (s *ProgressService) Complete(ctx context.Context, id string, req CompleteProgressRequest, now time.Time) (*models.LessonProgress, error) {
	if id == "" {
		return nil, appErrors.ErrValidation.With("progress id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}

	record, err := s.repo.MarkCompleted(ctx, id, req.Score, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.With("lesson progress record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete lesson progress")
	}

	s.invalidateSummaries(ctx, record.StudentID)
	return record, nil
}

func (s *ProgressService) invalidateSummaries(ctx context.Context, studentID string) {
	if !s.cache.Enabled() {
		return
	}
	pattern := fmt.Sprintf("progress:summary:%s:*", studentID)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate progress summaries", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *ProgressService) buildSummary(studentID, termID string, records []models.LessonProgress, now time.Time) *models.ProgressSummary {
	summary := &models.ProgressSummary{
		StudentID:   studentID,
		TermID:      termID,
		GeneratedAt: now,
	}

	type subjectAgg struct {
		total     int
		completed int
		scoreSum  float64
		scored    int
	}
	bySubject := make(map[string]*subjectAgg)
	var scoreSum float64
	var scored int

	for _, record := range records {
		summary.TotalLessons++
		agg := bySubject[record.SubjectID]
		if agg == nil {
			agg = &subjectAgg{}
			bySubject[record.SubjectID] = agg
		}
		agg.total++
		if record.Completed {
			summary.Completed++
			agg.completed++
		}
		if record.Score != nil {
			scoreSum += *record.Score
			scored++
			agg.scoreSum += *record.Score
			agg.scored++
		}
	}

	summary.CompletionRate = s.CompletionRate(summary.Completed, summary.TotalLessons)
	if scored > 0 {
		summary.AverageScore = scoreSum / float64(scored)
	}
	summary.GradeBand = s.GradeBand(summary.AverageScore)
	summary.CurrentStreak = s.Streak(records)

	subjectIDs := make([]string, 0, len(bySubject))
	for id := range bySubject {
		subjectIDs = append(subjectIDs, id)
	}
	sort.Strings(subjectIDs)

	for _, id := range subjectIDs {
		agg := bySubject[id]
		sp := models.SubjectProgress{
			SubjectID:      id,
			TotalLessons:   agg.total,
			Completed:      agg.completed,
			CompletionRate: s.CompletionRate(agg.completed, agg.total),
		}
		if agg.scored > 0 {
			sp.AverageScore = agg.scoreSum / float64(agg.scored)
		}
		sp.GradeBand = s.GradeBand(sp.AverageScore)
		summary.Subjects = append(summary.Subjects, sp)
	}

	return summary
}
