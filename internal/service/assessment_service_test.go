package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
)

func newAssessmentServiceForTest(repo *assessmentRepoStub, defaultGrace time.Duration) *AssessmentService {
	windows := NewWindowService(nil, 15*time.Minute, nil, nil)
	return NewAssessmentService(repo, windows, defaultGrace, nil, nil)
}

func intPtr(v int) *int { return &v }

func seedAssessment(repo *assessmentRepoStub) {
	repo.assessments["asmt-1"] = &models.Assessment{
		ID:                 "asmt-1",
		Title:              "Midterm",
		SubjectID:          "math",
		TermID:             "term-1",
		StartTime:          time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
		EndTime:            time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC),
		GracePeriodMinutes: 15,
	}
}

func TestAssessmentServiceCreateDefaultsGracePeriod(t *testing.T) {
	repo := newAssessmentRepoStub()
	svc := newAssessmentServiceForTest(repo, 30*time.Minute)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateAssessmentRequest{
		Title:     "Quiz",
		SubjectID: "math",
		TermID:    "term-1",
		StartTime: "2024-03-04T10:00:00Z",
		EndTime:   "2024-03-04T11:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, created.GracePeriodMinutes)

	// An explicit zero disables the grace period instead of inheriting the default.
	created, err = svc.Create(ctx, CreateAssessmentRequest{
		Title:              "Strict Quiz",
		SubjectID:          "math",
		TermID:             "term-1",
		StartTime:          "2024-03-05T10:00:00Z",
		EndTime:            "2024-03-05T11:00:00Z",
		GracePeriodMinutes: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created.GracePeriodMinutes)
}

func TestAssessmentServiceCreateRejectsBadWindow(t *testing.T) {
	svc := newAssessmentServiceForTest(newAssessmentRepoStub(), 30*time.Minute)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAssessmentRequest{
		Title:     "Backwards",
		SubjectID: "math",
		TermID:    "term-1",
		StartTime: "2024-03-04T11:00:00Z",
		EndTime:   "2024-03-04T10:00:00Z",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.Create(ctx, CreateAssessmentRequest{
		Title:              "Negative Grace",
		SubjectID:          "math",
		TermID:             "term-1",
		StartTime:          "2024-03-04T10:00:00Z",
		EndTime:            "2024-03-04T11:00:00Z",
		GracePeriodMinutes: intPtr(-5),
	})
	require.Error(t, err)
}

func TestAssessmentServiceSubmitBeforeWindowOpens(t *testing.T) {
	repo := newAssessmentRepoStub()
	seedAssessment(repo)
	svc := newAssessmentServiceForTest(repo, 0)

	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	_, err := svc.Submit(context.Background(), "asmt-1", "stu-1", SubmitAssessmentRequest{}, now)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrWindowNotOpen.Code, appErr.Code)
	assert.Empty(t, repo.submissions)
}

func TestAssessmentServiceSubmitAfterGraceCloses(t *testing.T) {
	repo := newAssessmentRepoStub()
	seedAssessment(repo)
	svc := newAssessmentServiceForTest(repo, 0)

	now := time.Date(2024, 3, 4, 11, 20, 0, 0, time.UTC)
	_, err := svc.Submit(context.Background(), "asmt-1", "stu-1", SubmitAssessmentRequest{}, now)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrWindowClosed.Code, appErr.Code)
}

func TestAssessmentServiceSubmitDuringGrace(t *testing.T) {
	repo := newAssessmentRepoStub()
	seedAssessment(repo)
	svc := newAssessmentServiceForTest(repo, 0)

	now := time.Date(2024, 3, 4, 11, 10, 0, 0, time.UTC)
	submission, err := svc.Submit(context.Background(), "asmt-1", "stu-1", SubmitAssessmentRequest{Score: scorePtr(88)}, now)
	require.NoError(t, err)
	assert.Equal(t, "asmt-1", submission.AssessmentID)
	assert.Equal(t, now, submission.SubmittedAt)
}

func TestAssessmentServiceSubmitRejectsDuplicate(t *testing.T) {
	repo := newAssessmentRepoStub()
	seedAssessment(repo)
	svc := newAssessmentServiceForTest(repo, 0)

	now := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)
	_, err := svc.Submit(context.Background(), "asmt-1", "stu-1", SubmitAssessmentRequest{}, now)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "asmt-1", "stu-1", SubmitAssessmentRequest{}, now.Add(time.Minute))
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAssessmentServiceSubmitUnknownAssessment(t *testing.T) {
	svc := newAssessmentServiceForTest(newAssessmentRepoStub(), 0)

	_, err := svc.Submit(context.Background(), "missing", "stu-1", SubmitAssessmentRequest{}, time.Now())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
