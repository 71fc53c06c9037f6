package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-schedule-api/internal/models"
)

// ProgressRepository provides persistence for lesson progress records.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = "id, student_id, subject_id, term_id, lesson_date, completed, score, completed_at, created_at, updated_at"

// ListByFilter returns progress records matching the filter ordered by lesson date descending.
func (r *ProgressRepository) ListByFilter(ctx context.Context, filter models.ProgressFilter) ([]models.LessonProgress, error) {
	base := "FROM lesson_progress WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("lesson_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("lesson_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY lesson_date DESC", progressColumns, base)
	var records []models.LessonProgress
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list lesson progress: %w", err)
	}
	return records, nil
}

// Create inserts a new progress record.
func (r *ProgressRepository) Create(ctx context.Context, p *models.LessonProgress) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	const query = `INSERT INTO lesson_progress (id, student_id, subject_id, term_id, lesson_date, completed, score, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		p.ID, p.StudentID, p.SubjectID, p.TermID, p.LessonDate, p.Completed, p.Score, p.CompletedAt, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create lesson progress: %w", err)
	}
	return nil
}

// MarkCompleted flips a record to completed with an optional score and returns
// the updated row. sql.ErrNoRows surfaces unchanged when the id is unknown.
func (r *ProgressRepository) MarkCompleted(ctx context.Context, id string, score *float64, completedAt time.Time) (*models.LessonProgress, error) {
	query := fmt.Sprintf(`UPDATE lesson_progress SET completed = TRUE, score = $2, completed_at = $3, updated_at = $4 WHERE id = $1 RETURNING %s`, progressColumns)
	var record models.LessonProgress
	if err := r.db.GetContext(ctx, &record, query, id, score, completedAt, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("mark lesson progress completed: %w", err)
	}
	return &record, nil
}
