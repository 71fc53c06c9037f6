package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-schedule-api/internal/models"
)

func archiveEntry() models.ScheduleEntry {
	return models.ScheduleEntry{
		ID:           "e-1",
		StudentID:    "stu-1",
		TermID:       "term-1",
		SubjectID:    "math",
		SubjectName:  "Mathematics",
		DayOfWeek:    models.Monday,
		PeriodNumber: 1,
		StartTime:    "08:00",
		EndTime:      "09:00",
		ScheduledFor: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestArchiveRepositoryArchiveEntry(t *testing.T) {
	db, mock, cleanup := newScheduleMock(t)
	defer cleanup()
	repo := NewArchiveRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO archived_schedule_entries").
		WithArgs(sqlmock.AnyArg(), "e-1", "stu-1", "term-1", "math", "Mathematics", 0, 1, "08:00", "09:00", false, sqlmock.AnyArg(), "PAST_DATE", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries WHERE id = $1")).
		WithArgs("e-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ArchiveEntry(context.Background(), archiveEntry(), models.ArchiveReasonPastDate)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepositoryArchiveEntryRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newScheduleMock(t)
	defer cleanup()
	repo := NewArchiveRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO archived_schedule_entries").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ArchiveEntry(context.Background(), archiveEntry(), models.ArchiveReasonCompleted)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepositoryList(t *testing.T) {
	db, mock, cleanup := newScheduleMock(t)
	defer cleanup()
	repo := NewArchiveRepository(db)

	rows := sqlmock.NewRows([]string{"id", "entry_id", "student_id", "term_id", "subject_id", "subject_name", "day_of_week", "period_number", "start_time", "end_time", "completed", "scheduled_for", "reason", "archived_at"}).
		AddRow("a-1", "e-1", "stu-1", "term-1", "math", "Mathematics", int64(0), 1, "08:00", "09:00", true, time.Now(), "COMPLETED", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM archived_schedule_entries WHERE 1=1 AND student_id = $1 AND reason = $2 ORDER BY archived_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("stu-1", "COMPLETED").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM archived_schedule_entries WHERE 1=1 AND student_id = $1 AND reason = $2")).
		WithArgs("stu-1", "COMPLETED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	entries, total, err := repo.List(context.Background(), models.ArchiveFilter{StudentID: "stu-1", Reason: models.ArchiveReasonCompleted})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.ArchiveReasonCompleted, entries[0].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}
