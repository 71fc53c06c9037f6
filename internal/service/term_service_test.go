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

type termRepoStub struct {
	terms   map[string]*models.Term
	created []*models.Term
}

func newTermRepoStub() *termRepoStub {
	return &termRepoStub{terms: make(map[string]*models.Term)}
}

func (r *termRepoStub) List(ctx context.Context, filter models.TermFilter) ([]models.Term, int, error) {
	result := make([]models.Term, 0, len(r.terms))
	for _, term := range r.terms {
		result = append(result, *term)
	}
	return result, len(result), nil
}

func (r *termRepoStub) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if term, ok := r.terms[id]; ok {
		copy := *term
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *termRepoStub) FindActive(ctx context.Context) (*models.Term, error) {
	for _, term := range r.terms {
		if term.IsActive {
			copy := *term
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *termRepoStub) Create(ctx context.Context, term *models.Term) error {
	if term.ID == "" {
		term.ID = "term-gen"
	}
	r.created = append(r.created, term)
	r.terms[term.ID] = term
	return nil
}

func (r *termRepoStub) Update(ctx context.Context, term *models.Term) error {
	r.terms[term.ID] = term
	return nil
}

func newTermServiceForTest(repo *termRepoStub) *TermService {
	return NewTermService(repo, NewWeekService(nil), nil, 0, nil, nil)
}

func seedTerm(repo *termRepoStub) {
	repo.terms["term-1"] = &models.Term{
		ID:        "term-1",
		Name:      "Spring",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC),
	}
}

func TestTermServiceCreateValidatesDates(t *testing.T) {
	repo := newTermRepoStub()
	svc := newTermServiceForTest(repo)
	ctx := context.Background()

	term, err := svc.Create(ctx, CreateTermRequest{
		Name:         "Spring",
		AcademicYear: "2024",
		StartDate:    "2024-01-01",
		EndDate:      "2024-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), term.StartDate)

	_, err = svc.Create(ctx, CreateTermRequest{
		Name:         "Backwards",
		AcademicYear: "2024",
		StartDate:    "2024-06-30",
		EndDate:      "2024-01-01",
	})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateTermRequest{
		Name:         "Malformed",
		AcademicYear: "2024",
		StartDate:    "January 1st",
		EndDate:      "2024-06-30",
	})
	require.Error(t, err)
}

func TestTermServiceWeeks(t *testing.T) {
	repo := newTermRepoStub()
	seedTerm(repo)
	svc := newTermServiceForTest(repo)

	weeks, cached, err := svc.Weeks(context.Background(), "term-1", time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, weeks, 3)
	assert.True(t, weeks[1].IsCurrentWeek)

	_, _, err = svc.Weeks(context.Background(), "missing", time.Now())
	require.Error(t, err)
}

func TestTermServiceActive(t *testing.T) {
	repo := newTermRepoStub()
	svc := newTermServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Active(ctx)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	repo.terms["term-2"] = &models.Term{ID: "term-2", Name: "Fall", IsActive: true}
	term, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "term-2", term.ID)
}

func TestTermServiceUpdateValidatesDates(t *testing.T) {
	repo := newTermRepoStub()
	seedTerm(repo)
	svc := newTermServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Update(ctx, "term-1", UpdateTermRequest{
		Name:         "Backwards",
		AcademicYear: "2024",
		StartDate:    "2024-06-30",
		EndDate:      "2024-01-01",
	})
	require.Error(t, err)

	_, err = svc.Update(ctx, "missing", UpdateTermRequest{
		Name:         "Spring",
		AcademicYear: "2024",
		StartDate:    "2024-01-01",
		EndDate:      "2024-06-30",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTermServiceWeeksCachedWithConfiguredTTL(t *testing.T) {
	repo := newTermRepoStub()
	seedTerm(repo)
	cacheRepo := newCacheRepoStub()
	svc := NewTermService(repo, NewWeekService(nil), newCacheServiceForTest(cacheRepo), 30*time.Minute, nil, nil)
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	_, cached, err := svc.Weeks(context.Background(), "term-1", now)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 30*time.Minute, cacheRepo.ttls["term:weeks:term-1:2024-01-10"])

	_, cached, err = svc.Weeks(context.Background(), "term-1", now)
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestTermServiceUpdateDropsCachedWeeks(t *testing.T) {
	repo := newTermRepoStub()
	seedTerm(repo)
	cacheRepo := newCacheRepoStub()
	svc := NewTermService(repo, NewWeekService(nil), newCacheServiceForTest(cacheRepo), 0, nil, nil)
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	weeks, _, err := svc.Weeks(ctx, "term-1", now)
	require.NoError(t, err)
	require.Len(t, weeks, 3)

	// Extending the term must not leave the three-week expansion cached.
	_, err = svc.Update(ctx, "term-1", UpdateTermRequest{
		Name:         "Spring",
		AcademicYear: "2024",
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-28",
	})
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.invalidated, "term:weeks:term-1:*")

	weeks, cached, err := svc.Weeks(ctx, "term-1", now)
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, weeks, 4)
}

func TestTermServiceCurrentWeek(t *testing.T) {
	repo := newTermRepoStub()
	seedTerm(repo)
	svc := newTermServiceForTest(repo)
	ctx := context.Background()

	week, err := svc.CurrentWeek(ctx, "term-1", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, week.WeekNumber)
	assert.True(t, week.IsCurrentWeek)

	_, err = svc.CurrentWeek(ctx, "term-1", time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrOutsideTerm.Code, appErr.Code)

	_, err = svc.CurrentWeek(ctx, "term-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}
