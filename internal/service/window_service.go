package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
)

type accessAssessmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	FindSubmission(ctx context.Context, assessmentID, studentID string) (*models.AssessmentSubmission, error)
}

// WindowService classifies instants against assessment windows. All methods
// take the current time as an explicit argument; callers inject the clock at
// the boundary so evaluation stays deterministic.
type WindowService struct {
	repo        accessAssessmentRepository
	minDuration time.Duration
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewWindowService constructs a WindowService. The repository may be nil when
// only the pure evaluation helpers are needed.
func NewWindowService(repo accessAssessmentRepository, minDuration time.Duration, logger *zap.Logger, metrics *MetricsService) *WindowService {
	if minDuration <= 0 {
		minDuration = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WindowService{repo: repo, minDuration: minDuration, logger: logger, metrics: metrics}
}

// Evaluate classifies now against the window. The four states partition the
// timeline: NOT_STARTED on (-inf,start), ACTIVE on [start,end), GRACE_PERIOD
// on [end,end+grace) when grace is configured, EXPIRED afterwards. The window
// end instant itself belongs to the grace period when one exists.
func (s *WindowService) Evaluate(w models.TimeWindow, now time.Time) models.WindowStatus {
	status := models.WindowStatus{
		CheckedAt:   now,
		WindowStart: w.StartTime,
		WindowEnd:   w.EndTime,
		GraceEnd:    w.GraceEnd(),
		Urgency:     models.UrgencyNone,
	}

	switch {
	case now.Before(w.StartTime):
		status.State = models.WindowNotStarted
		status.MinutesUntilStart = minutesBetween(now, w.StartTime)
	case now.Before(w.EndTime):
		status.State = models.WindowActive
		status.MinutesRemaining = minutesBetween(now, w.EndTime)
		status.Urgency = urgencyFor(status.MinutesRemaining)
	case w.GracePeriodMinutes > 0 && now.Before(status.GraceEnd):
		status.State = models.WindowGracePeriod
		status.MinutesRemaining = minutesBetween(now, status.GraceEnd)
		status.Urgency = urgencyFor(status.MinutesRemaining)
	default:
		status.State = models.WindowExpired
	}

	if s.metrics != nil {
		s.metrics.RecordWindowEvaluation(string(status.State))
	}
	return status
}

// IsWindowActive reports whether now falls inside [start,end).
func (s *WindowService) IsWindowActive(w models.TimeWindow, now time.Time) bool {
	return s.Evaluate(w, now).State == models.WindowActive
}

// IsWindowExpired reports whether the window (including grace) has closed.
func (s *WindowService) IsWindowExpired(w models.TimeWindow, now time.Time) bool {
	return s.Evaluate(w, now).State == models.WindowExpired
}

// CanStartAssessment reports whether a new attempt may begin. Starting is
// forbidden during the grace period; only continuation of an attempt already
// underway is allowed then.
func (s *WindowService) CanStartAssessment(w models.TimeWindow, now time.Time) bool {
	return s.Evaluate(w, now).State == models.WindowActive
}

// CanSubmitAssessment reports whether a submission is still accepted, which
// covers both the active window and the grace period.
func (s *WindowService) CanSubmitAssessment(w models.TimeWindow, now time.Time) bool {
	state := s.Evaluate(w, now).State
	return state == models.WindowActive || state == models.WindowGracePeriod
}

// UrgencyLevel projects the evaluation into a display urgency.
func (s *WindowService) UrgencyLevel(w models.TimeWindow, now time.Time) models.UrgencyLevel {
	return s.Evaluate(w, now).Urgency
}

// ValidateWindowConfig checks a raw window configuration and accumulates every
// violation instead of failing on the first.
func (s *WindowService) ValidateWindowConfig(startRaw, endRaw string, graceMinutes int) models.WindowConfigReport {
	var violations []string

	start, startErr := time.Parse(time.RFC3339, startRaw)
	if startErr != nil {
		violations = append(violations, fmt.Sprintf("start_time %q is not a valid RFC3339 timestamp", startRaw))
	}
	end, endErr := time.Parse(time.RFC3339, endRaw)
	if endErr != nil {
		violations = append(violations, fmt.Sprintf("end_time %q is not a valid RFC3339 timestamp", endRaw))
	}

	if startErr == nil && endErr == nil {
		if !end.After(start) {
			violations = append(violations, "end_time must be after start_time")
		} else if end.Sub(start) < s.minDuration {
			violations = append(violations, fmt.Sprintf("window must be at least %d minutes long", int(s.minDuration.Minutes())))
		}
	}

	if graceMinutes < 0 {
		violations = append(violations, "grace_period_minutes must not be negative")
	}

	return models.WindowConfigReport{Valid: len(violations) == 0, Violations: violations}
}

// CheckAccess loads the assessment and any prior submission, then decides
// whether the student may open it at now.
func (s *WindowService) CheckAccess(ctx context.Context, assessmentID, studentID string, now time.Time) (*models.AccessDecision, error) {
	if s.repo == nil {
		return nil, appErrors.ErrInternal
	}

	assessment, err := s.repo.FindByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.With("assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}

	submission, err := s.repo.FindSubmission(ctx, assessmentID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	window := assessment.Window()
	decision := &models.AccessDecision{
		WindowStart: window.StartTime,
		WindowEnd:   window.EndTime,
		CheckedAt:   now,
	}

	if submission != nil {
		decision.Status = models.AccessAlreadySubmitted
		decision.Reason = "assessment already submitted"
		return decision, nil
	}

	status := s.Evaluate(window, now)
	switch status.State {
	case models.WindowNotStarted:
		decision.Status = models.AccessNotYetOpen
		decision.Reason = fmt.Sprintf("assessment opens at %s", window.StartTime.Format("15:04"))
		decision.MinutesUntilOpen = status.MinutesUntilStart
	case models.WindowActive:
		decision.CanAccess = true
		decision.Status = models.AccessAllowed
		decision.MinutesRemaining = status.MinutesRemaining
	case models.WindowGracePeriod:
		// Continuation only: the window proper has closed, so no new attempt
		// may start, but an in-flight one may still submit.
		decision.Status = models.AccessGracePeriod
		decision.Reason = "window closed; grace period allows finishing an attempt already underway"
		decision.MinutesRemaining = status.MinutesRemaining
		decision.GracePeriodActive = true
	default:
		decision.Status = models.AccessExpired
		decision.Reason = fmt.Sprintf("assessment window closed at %s", window.GraceEnd().Format("15:04"))
	}

	return decision, nil
}

// minutesBetween reports whole minutes from a to b, never negative.
func minutesBetween(a, b time.Time) int64 {
	if b.Before(a) {
		return 0
	}
	return int64(b.Sub(a) / time.Minute)
}

func urgencyFor(minutesRemaining int64) models.UrgencyLevel {
	switch {
	case minutesRemaining > 30:
		return models.UrgencyLow
	case minutesRemaining > 15:
		return models.UrgencyMedium
	case minutesRemaining > 5:
		return models.UrgencyHigh
	default:
		return models.UrgencyCritical
	}
}
