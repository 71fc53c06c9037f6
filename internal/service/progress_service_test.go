package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
)

type progressRepoStub struct {
	records []models.LessonProgress
	created []*models.LessonProgress
	calls   int
}

func (r *progressRepoStub) ListByFilter(ctx context.Context, filter models.ProgressFilter) ([]models.LessonProgress, error) {
	r.calls++
	return r.records, nil
}

func (r *progressRepoStub) Create(ctx context.Context, p *models.LessonProgress) error {
	if p.ID == "" {
		p.ID = "lp-gen"
	}
	r.created = append(r.created, p)
	r.records = append(r.records, *p)
	return nil
}

func (r *progressRepoStub) MarkCompleted(ctx context.Context, id string, score *float64, completedAt time.Time) (*models.LessonProgress, error) {
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i].Completed = true
			r.records[i].Score = score
			r.records[i].CompletedAt = &completedAt
			record := r.records[i]
			return &record, nil
		}
	}
	return nil, sql.ErrNoRows
}

func lesson(subjectID string, day int, completed bool, score *float64) models.LessonProgress {
	return models.LessonProgress{
		ID:         "lp-" + subjectID,
		StudentID:  "stu-1",
		SubjectID:  subjectID,
		TermID:     "term-1",
		LessonDate: time.Date(2024, 2, day, 0, 0, 0, 0, time.UTC),
		Completed:  completed,
		Score:      score,
	}
}

func scorePtr(v float64) *float64 { return &v }

func TestCompletionRate(t *testing.T) {
	svc := NewProgressService(nil, nil, nil, nil)

	assert.Equal(t, 0, svc.CompletionRate(0, 0))
	assert.Equal(t, 0, svc.CompletionRate(5, 0))
	assert.Equal(t, 50, svc.CompletionRate(1, 2))
	assert.Equal(t, 67, svc.CompletionRate(2, 3))
	assert.Equal(t, 33, svc.CompletionRate(1, 3))
	assert.Equal(t, 100, svc.CompletionRate(7, 7))
}

func TestWeightedAverage(t *testing.T) {
	svc := NewProgressService(nil, nil, nil, nil)

	assert.Equal(t, 0.0, svc.WeightedAverage(nil, nil))
	assert.Equal(t, 0.0, svc.WeightedAverage([]float64{80}, []float64{1, 2}))
	assert.Equal(t, 0.0, svc.WeightedAverage([]float64{80, 90}, []float64{0, 0}))
	assert.InDelta(t, 86.0, svc.WeightedAverage([]float64{80, 90}, []float64{2, 3}), 0.001)
}

func TestGradeBand(t *testing.T) {
	svc := NewProgressService(nil, nil, nil, nil)

	cases := map[float64]string{
		95:   "A",
		90:   "A",
		89.9: "B",
		80:   "B",
		75:   "C",
		70:   "C",
		65:   "D",
		60:   "D",
		55:   "E",
		50:   "E",
		49:   "F",
		0:    "F",
	}
	for pct, want := range cases {
		assert.Equal(t, want, svc.GradeBand(pct), "percentage %.1f", pct)
	}
}

func TestStreak(t *testing.T) {
	svc := NewProgressService(nil, nil, nil, nil)

	assert.Equal(t, 0, svc.Streak(nil))

	records := []models.LessonProgress{
		lesson("math", 1, true, nil),
		lesson("math", 2, false, nil),
		lesson("math", 3, true, nil),
		lesson("math", 4, true, nil),
	}
	// Walking backward from Feb 4: two completed, then the Feb 2 miss ends it.
	assert.Equal(t, 2, svc.Streak(records))

	allDone := []models.LessonProgress{
		lesson("math", 1, true, nil),
		lesson("math", 2, true, nil),
	}
	assert.Equal(t, 2, svc.Streak(allDone))

	latestMissed := []models.LessonProgress{
		lesson("math", 1, true, nil),
		lesson("math", 2, false, nil),
	}
	assert.Equal(t, 0, svc.Streak(latestMissed))
}

func TestSummaryAggregatesPerSubject(t *testing.T) {
	repo := &progressRepoStub{records: []models.LessonProgress{
		lesson("math", 1, true, scorePtr(90)),
		lesson("math", 2, true, scorePtr(80)),
		lesson("phys", 3, false, nil),
		lesson("phys", 4, true, scorePtr(70)),
	}}
	svc := NewProgressService(repo, nil, nil, nil)

	summary, cached, err := svc.Summary(context.Background(), "stu-1", "term-1", time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, 4, summary.TotalLessons)
	assert.Equal(t, 3, summary.Completed)
	assert.Equal(t, 75, summary.CompletionRate)
	assert.InDelta(t, 80.0, summary.AverageScore, 0.001)
	assert.Equal(t, "B", summary.GradeBand)
	assert.Equal(t, 1, summary.CurrentStreak)

	require.Len(t, summary.Subjects, 2)
	math := summary.Subjects[0]
	assert.Equal(t, "math", math.SubjectID)
	assert.Equal(t, 100, math.CompletionRate)
	assert.InDelta(t, 85.0, math.AverageScore, 0.001)
	assert.Equal(t, "B", math.GradeBand)

	phys := summary.Subjects[1]
	assert.Equal(t, "phys", phys.SubjectID)
	assert.Equal(t, 50, phys.CompletionRate)
	assert.InDelta(t, 70.0, phys.AverageScore, 0.001)
}

func TestSummaryRequiresIdentifiers(t *testing.T) {
	svc := NewProgressService(&progressRepoStub{}, nil, nil, nil)

	_, _, err := svc.Summary(context.Background(), "", "term-1", time.Now())
	require.Error(t, err)

	_, _, err = svc.Summary(context.Background(), "stu-1", "", time.Now())
	require.Error(t, err)
}

func TestRecordInvalidatesCachedSummary(t *testing.T) {
	repo := &progressRepoStub{records: []models.LessonProgress{lesson("math", 1, false, nil)}}
	cacheRepo := newCacheRepoStub()
	svc := NewProgressService(repo, newCacheServiceForTest(cacheRepo), nil, nil)
	ctx := context.Background()
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	first, cached, err := svc.Summary(ctx, "stu-1", "term-1", now)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 0, first.CompletionRate)

	_, cached, err = svc.Summary(ctx, "stu-1", "term-1", now)
	require.NoError(t, err)
	assert.True(t, cached)

	_, err = svc.Record(ctx, RecordProgressRequest{
		StudentID:  "stu-1",
		SubjectID:  "math",
		TermID:     "term-1",
		LessonDate: "2024-02-02",
		Completed:  true,
	}, now)
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.invalidated, "progress:summary:stu-1:*")

	// The write must not leave the 0% summary behind.
	refreshed, cached, err := svc.Summary(ctx, "stu-1", "term-1", now)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 50, refreshed.CompletionRate)
}

func TestCompleteInvalidatesCachedSummary(t *testing.T) {
	repo := &progressRepoStub{records: []models.LessonProgress{lesson("math", 1, false, nil)}}
	cacheRepo := newCacheRepoStub()
	svc := NewProgressService(repo, newCacheServiceForTest(cacheRepo), nil, nil)
	ctx := context.Background()
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	_, _, err := svc.Summary(ctx, "stu-1", "term-1", now)
	require.NoError(t, err)

	record, err := svc.Complete(ctx, "lp-math", CompleteProgressRequest{Score: scorePtr(90)}, now)
	require.NoError(t, err)
	assert.True(t, record.Completed)
	require.NotNil(t, record.Score)
	assert.Contains(t, cacheRepo.invalidated, "progress:summary:stu-1:*")

	refreshed, cached, err := svc.Summary(ctx, "stu-1", "term-1", now)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 100, refreshed.CompletionRate)
}

func TestCompleteUnknownRecord(t *testing.T) {
	svc := NewProgressService(&progressRepoStub{}, nil, nil, nil)

	_, err := svc.Complete(context.Background(), "missing", CompleteProgressRequest{}, time.Now())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRecordValidation(t *testing.T) {
	svc := NewProgressService(&progressRepoStub{}, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordProgressRequest{
		SubjectID:  "math",
		TermID:     "term-1",
		LessonDate: "2024-02-02",
	}, time.Now())
	require.Error(t, err)

	_, err = svc.Record(ctx, RecordProgressRequest{
		StudentID:  "stu-1",
		SubjectID:  "math",
		TermID:     "term-1",
		LessonDate: "February 2nd",
	}, time.Now())
	require.Error(t, err)
}

func TestSummaryEmptyRecords(t *testing.T) {
	svc := NewProgressService(&progressRepoStub{}, nil, nil, nil)

	summary, _, err := svc.Summary(context.Background(), "stu-1", "term-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalLessons)
	assert.Equal(t, 0, summary.CompletionRate)
	assert.Equal(t, "F", summary.GradeBand)
	assert.Empty(t, summary.Subjects)
}
