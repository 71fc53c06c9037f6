package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
	"github.com/noah-isme/lms-schedule-api/pkg/jobs"
)

type archiveScheduleRepository interface {
	ListArchiveCandidates(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleEntry, error)
}

type archiveRepository interface {
	List(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchivedScheduleEntry, int, error)
	ArchiveEntry(ctx context.Context, entry models.ScheduleEntry, reason models.ArchiveReason) error
}

// ArchiveService applies the archive-eligibility rules and runs the sweep
// that moves finished schedule rows into the archive table.
type ArchiveService struct {
	schedules archiveScheduleRepository
	archives  archiveRepository
	metrics   *MetricsService
	logger    *zap.Logger
	batchSize int

	queue *jobs.Queue
}

// NewArchiveService constructs an ArchiveService.
func NewArchiveService(schedules archiveScheduleRepository, archives archiveRepository, metrics *MetricsService, logger *zap.Logger, batchSize int) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &ArchiveService{schedules: schedules, archives: archives, metrics: metrics, logger: logger, batchSize: batchSize}
}

// StartQueue wires the background queue used for asynchronous sweeps.
func (s *ArchiveService) StartQueue(ctx context.Context) {
	s.queue = jobs.NewQueue("archive-sweep", func(ctx context.Context, _ jobs.Task) error {
		_, err := s.Run(ctx, time.Now().UTC())
		return err
	}, jobs.Options{Workers: 1, Logger: s.logger})
	s.queue.Start(ctx)
}

// StopQueue drains the background queue.
func (s *ArchiveService) StopQueue() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// ShouldArchive reports whether an entry is eligible for archiving: its date
// has passed or it is completed. The matched reason is returned alongside.
func (s *ArchiveService) ShouldArchive(entry models.ScheduleEntry, today time.Time) (bool, models.ArchiveReason) {
	if entry.Completed {
		return true, models.ArchiveReasonCompleted
	}
	if entry.ScheduledFor.Before(dateOf(today)) {
		return true, models.ArchiveReasonPastDate
	}
	return false, ""
}

// CanDelete reports whether an entry may be hard-deleted. Completed entries
// and entries with a recorded assessment score are immutable.
func (s *ArchiveService) CanDelete(entry models.ScheduleEntry, hasScore bool) bool {
	return !entry.Completed && !hasScore
}

// Run performs one synchronous archive sweep and reports counts.
func (s *ArchiveService) Run(ctx context.Context, now time.Time) (*models.ArchiveRunResult, error) {
	result := &models.ArchiveRunResult{StartedAt: now}

	candidates, err := s.schedules.ListArchiveCandidates(ctx, dateOf(now), s.batchSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archive candidates")
	}

	for _, entry := range candidates {
		result.Scanned++
		eligible, reason := s.ShouldArchive(entry, now)
		if !eligible {
			result.Skipped++
			continue
		}
		if err := s.archives.ArchiveEntry(ctx, entry, reason); err != nil {
			s.logger.Warn("failed to archive entry", zap.String("entry_id", entry.ID), zap.Error(err))
			result.Skipped++
			continue
		}
		result.Archived++
	}

	result.FinishedAt = time.Now().UTC()
	if s.metrics != nil {
		s.metrics.RecordArchiveSweep(result.Archived)
	}
	s.logger.Info("archive sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("archived", result.Archived),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// EnqueueRun schedules an asynchronous sweep. The queue must be started.
func (s *ArchiveService) EnqueueRun() error {
	if s.queue == nil {
		return appErrors.ErrInternal.With("archive queue not started")
	}
	return s.queue.Enqueue(jobs.Task{ID: uuid.NewString(), Kind: "archive-sweep"})
}

// List returns archived entries for review.
func (s *ArchiveService) List(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchivedScheduleEntry, *models.Pagination, error) {
	entries, total, err := s.archives.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archived entries")
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
