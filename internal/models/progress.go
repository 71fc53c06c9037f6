package models

import "time"

// LessonProgress records one student's completion state for a dated lesson.
type LessonProgress struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	SubjectID   string     `db:"subject_id" json:"subject_id"`
	TermID      string     `db:"term_id" json:"term_id"`
	LessonDate  time.Time  `db:"lesson_date" json:"lesson_date"`
	Completed   bool       `db:"completed" json:"completed"`
	Score       *float64   `db:"score" json:"score,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ProgressFilter describes query params for progress queries.
type ProgressFilter struct {
	StudentID string
	SubjectID string
	TermID    string
	From      *time.Time
	To        *time.Time
}

// SubjectProgress aggregates completion for one subject.
type SubjectProgress struct {
	SubjectID      string  `json:"subject_id"`
	TotalLessons   int     `json:"total_lessons"`
	Completed      int     `json:"completed"`
	CompletionRate int     `json:"completion_rate"`
	AverageScore   float64 `json:"average_score"`
	GradeBand      string  `json:"grade_band"`
}

// ProgressSummary is the per-student rollup served by the progress endpoints.
type ProgressSummary struct {
	StudentID      string            `json:"student_id"`
	TermID         string            `json:"term_id"`
	TotalLessons   int               `json:"total_lessons"`
	Completed      int               `json:"completed"`
	CompletionRate int               `json:"completion_rate"`
	AverageScore   float64           `json:"average_score"`
	GradeBand      string            `json:"grade_band"`
	CurrentStreak  int               `json:"current_streak"`
	Subjects       []SubjectProgress `json:"subjects,omitempty"`
	GeneratedAt    time.Time         `json:"generated_at"`
}
