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

// ScheduleRepository provides persistence for schedule entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = "id, student_id, term_id, subject_id, subject_name, day_of_week, period_number, start_time, end_time, completed, scheduled_for, created_at, updated_at"

// List returns schedule entries with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, int, error) {
	base := "FROM schedule_entries WHERE 1=1"
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
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.DayOfWeek != nil {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, int(*filter.DayOfWeek))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"day_of_week":   true,
		"period_number": true,
		"scheduled_for": true,
		"created_at":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, period_number ASC LIMIT %d OFFSET %d", scheduleColumns, base, sortBy, order, size, offset)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule entries: %w", err)
	}

	return entries, total, nil
}

// ListByStudent returns every entry for a student, optionally scoped to a term.
func (r *ScheduleRepository) ListByStudent(ctx context.Context, studentID, termID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE student_id = $1", scheduleColumns)
	args := []interface{}{studentID}
	if termID != "" {
		query += " AND term_id = $2"
		args = append(args, termID)
	}
	query += " ORDER BY day_of_week ASC, period_number ASC"

	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list student schedule: %w", err)
	}
	return entries, nil
}

// ListByStudentDay returns a student's entries for a single weekday within a term.
func (r *ScheduleRepository) ListByStudentDay(ctx context.Context, studentID, termID string, day models.Weekday) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE student_id = $1 AND term_id = $2 AND day_of_week = $3 ORDER BY period_number ASC", scheduleColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID, termID, int(day)); err != nil {
		return nil, fmt.Errorf("list day schedule: %w", err)
	}
	return entries, nil
}

// FindByID loads a schedule entry by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE id = $1", scheduleColumns)
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create inserts a new schedule entry.
func (r *ScheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `INSERT INTO schedule_entries (id, student_id, term_id, subject_id, subject_name, day_of_week, period_number, start_time, end_time, completed, scheduled_for, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.StudentID, entry.TermID, entry.SubjectID, entry.SubjectName,
		int(entry.DayOfWeek), entry.PeriodNumber, entry.StartTime, entry.EndTime,
		entry.Completed, entry.ScheduledFor, entry.CreatedAt, entry.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}
	return nil
}

// Update rewrites an existing schedule entry.
func (r *ScheduleRepository) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_entries SET student_id = $2, term_id = $3, subject_id = $4, subject_name = $5, day_of_week = $6, period_number = $7, start_time = $8, end_time = $9, completed = $10, scheduled_for = $11, updated_at = $12 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.StudentID, entry.TermID, entry.SubjectID, entry.SubjectName,
		int(entry.DayOfWeek), entry.PeriodNumber, entry.StartTime, entry.EndTime,
		entry.Completed, entry.ScheduledFor, entry.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}
	return nil
}

// Delete removes a schedule entry.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return nil
}

// ListArchiveCandidates returns entries scheduled strictly before the cutoff
// or already completed, up to limit rows.
func (r *ScheduleRepository) ListArchiveCandidates(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleEntry, error) {
	if limit <= 0 {
		limit = 500
	}
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE scheduled_for < $1 OR completed = TRUE ORDER BY scheduled_for ASC LIMIT %d", scheduleColumns, limit)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, cutoff); err != nil {
		return nil, fmt.Errorf("list archive candidates: %w", err)
	}
	return entries, nil
}
