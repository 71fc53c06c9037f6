package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-schedule-api/internal/models"
)

type archiveCandidatesStub struct {
	candidates []models.ScheduleEntry
}

func (r archiveCandidatesStub) ListArchiveCandidates(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleEntry, error) {
	return r.candidates, nil
}

type archiveStoreStub struct {
	archived map[string]models.ArchiveReason
	failID   string
}

func newArchiveStoreStub() *archiveStoreStub {
	return &archiveStoreStub{archived: make(map[string]models.ArchiveReason)}
}

func (r *archiveStoreStub) List(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchivedScheduleEntry, int, error) {
	return nil, 0, nil
}

func (r *archiveStoreStub) ArchiveEntry(ctx context.Context, entry models.ScheduleEntry, reason models.ArchiveReason) error {
	if entry.ID == r.failID {
		return fmt.Errorf("insert failed")
	}
	r.archived[entry.ID] = reason
	return nil
}

func TestShouldArchive(t *testing.T) {
	svc := NewArchiveService(nil, nil, nil, nil, 0)
	today := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

	past := models.ScheduleEntry{ID: "past", ScheduledFor: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}
	eligible, reason := svc.ShouldArchive(past, today)
	assert.True(t, eligible)
	assert.Equal(t, models.ArchiveReasonPastDate, reason)

	done := models.ScheduleEntry{ID: "done", ScheduledFor: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Completed: true}
	eligible, reason = svc.ShouldArchive(done, today)
	assert.True(t, eligible)
	assert.Equal(t, models.ArchiveReasonCompleted, reason)

	// Completed wins when both conditions hold.
	both := models.ScheduleEntry{ID: "both", ScheduledFor: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Completed: true}
	_, reason = svc.ShouldArchive(both, today)
	assert.Equal(t, models.ArchiveReasonCompleted, reason)

	todayEntry := models.ScheduleEntry{ID: "today", ScheduledFor: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	eligible, _ = svc.ShouldArchive(todayEntry, today)
	assert.False(t, eligible)

	upcoming := models.ScheduleEntry{ID: "future", ScheduledFor: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)}
	eligible, _ = svc.ShouldArchive(upcoming, today)
	assert.False(t, eligible)
}

func TestCanDelete(t *testing.T) {
	svc := NewArchiveService(nil, nil, nil, nil, 0)

	assert.True(t, svc.CanDelete(models.ScheduleEntry{}, false))
	assert.False(t, svc.CanDelete(models.ScheduleEntry{Completed: true}, false))
	assert.False(t, svc.CanDelete(models.ScheduleEntry{}, true))
	assert.False(t, svc.CanDelete(models.ScheduleEntry{Completed: true}, true))
}

func TestArchiveRunCounts(t *testing.T) {
	now := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	schedules := archiveCandidatesStub{candidates: []models.ScheduleEntry{
		{ID: "past", ScheduledFor: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "done", ScheduledFor: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), Completed: true},
		{ID: "keep", ScheduledFor: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)},
	}}
	store := newArchiveStoreStub()
	svc := NewArchiveService(schedules, store, nil, nil, 0)

	result, err := svc.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 2, result.Archived)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, models.ArchiveReasonPastDate, store.archived["past"])
	assert.Equal(t, models.ArchiveReasonCompleted, store.archived["done"])
}

func TestArchiveRunSkipsFailedInserts(t *testing.T) {
	schedules := archiveCandidatesStub{candidates: []models.ScheduleEntry{
		{ID: "bad", ScheduledFor: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "ok", ScheduledFor: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}}
	store := newArchiveStoreStub()
	store.failID = "bad"
	svc := NewArchiveService(schedules, store, nil, nil, 0)

	result, err := svc.Run(context.Background(), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Archived)
	assert.Equal(t, 1, result.Skipped)
}

func TestEnqueueRunRequiresStartedQueue(t *testing.T) {
	svc := NewArchiveService(nil, nil, nil, nil, 0)
	require.Error(t, svc.EnqueueRun())
}
