package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-schedule-api/internal/models"
)

// ArchiveRepository provides persistence for archived schedule entries.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository creates a new archive repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

const archiveColumns = "id, entry_id, student_id, term_id, subject_id, subject_name, day_of_week, period_number, start_time, end_time, completed, scheduled_for, reason, archived_at"

// List returns archived entries with optional filtering and pagination.
func (r *ArchiveRepository) List(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchivedScheduleEntry, int, error) {
	base := "FROM archived_schedule_entries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.Reason != "" {
		conditions = append(conditions, fmt.Sprintf("reason = $%d", len(args)+1))
		args = append(args, string(filter.Reason))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY archived_at DESC LIMIT %d OFFSET %d", archiveColumns, base, size, offset)
	var entries []models.ArchivedScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list archived entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count archived entries: %w", err)
	}

	return entries, total, nil
}

// ArchiveEntry moves a schedule entry into the archive table and removes the
// live row inside one transaction.
func (r *ArchiveRepository) ArchiveEntry(ctx context.Context, entry models.ScheduleEntry, reason models.ArchiveReason) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `INSERT INTO archived_schedule_entries (id, entry_id, student_id, term_id, subject_id, subject_name, day_of_week, period_number, start_time, end_time, completed, scheduled_for, reason, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if _, err := tx.ExecContext(ctx, insert,
		uuid.NewString(), entry.ID, entry.StudentID, entry.TermID, entry.SubjectID, entry.SubjectName,
		int(entry.DayOfWeek), entry.PeriodNumber, entry.StartTime, entry.EndTime,
		entry.Completed, entry.ScheduledFor, string(reason), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert archived entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, entry.ID); err != nil {
		return fmt.Errorf("delete live entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}
