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

// AssessmentRepository provides persistence for assessments and submissions.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = "id, title, subject_id, term_id, start_time, end_time, grace_period_minutes, created_at, updated_at"

// List returns assessments with optional filtering and pagination.
func (r *AssessmentRepository) List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, int, error) {
	base := "FROM assessments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"start_time": true,
		"end_time":   true,
		"title":      true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "start_time"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", assessmentColumns, base, sortBy, order, size, offset)
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assessments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assessments: %w", err)
	}

	return assessments, total, nil
}

// FindByID loads an assessment by id.
func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	query := fmt.Sprintf("SELECT %s FROM assessments WHERE id = $1", assessmentColumns)
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, id); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// Create inserts a new assessment.
func (r *AssessmentRepository) Create(ctx context.Context, a *models.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	const query = `INSERT INTO assessments (id, title, subject_id, term_id, start_time, end_time, grace_period_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		a.ID, a.Title, a.SubjectID, a.TermID, a.StartTime, a.EndTime, a.GracePeriodMinutes, a.CreatedAt, a.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// FindSubmission loads a student's submission for an assessment. Returns nil
// without error when no submission exists.
func (r *AssessmentRepository) FindSubmission(ctx context.Context, assessmentID, studentID string) (*models.AssessmentSubmission, error) {
	const query = `SELECT id, assessment_id, student_id, submitted_at, score, created_at FROM assessment_submissions WHERE assessment_id = $1 AND student_id = $2 LIMIT 1`
	var submission models.AssessmentSubmission
	if err := r.db.GetContext(ctx, &submission, query, assessmentID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &submission, nil
}

// CreateSubmission records a completed attempt.
func (r *AssessmentRepository) CreateSubmission(ctx context.Context, s *models.AssessmentSubmission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO assessment_submissions (id, assessment_id, student_id, submitted_at, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		s.ID, s.AssessmentID, s.StudentID, s.SubmittedAt, s.Score, s.CreatedAt,
	); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// HasScore reports whether any submission with a recorded score exists for the
// given schedule entry's subject/student pair.
func (r *AssessmentRepository) HasScore(ctx context.Context, studentID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM assessment_submissions s JOIN assessments a ON a.id = s.assessment_id WHERE s.student_id = $1 AND a.subject_id = $2 AND s.score IS NOT NULL LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check scored submission: %w", err)
	}
	return true, nil
}
