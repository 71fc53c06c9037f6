package models

import "time"

// Assessment is an assessed activity with a fixed attempt window.
type Assessment struct {
	ID                 string    `db:"id" json:"id"`
	Title              string    `db:"title" json:"title"`
	SubjectID          string    `db:"subject_id" json:"subject_id"`
	TermID             string    `db:"term_id" json:"term_id"`
	StartTime          time.Time `db:"start_time" json:"start_time"`
	EndTime            time.Time `db:"end_time" json:"end_time"`
	GracePeriodMinutes int       `db:"grace_period_minutes" json:"grace_period_minutes"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Window projects the assessment's attempt window as a value object.
func (a Assessment) Window() TimeWindow {
	return TimeWindow{
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		GracePeriodMinutes: a.GracePeriodMinutes,
	}
}

// AssessmentFilter describes query params for listing assessments.
type AssessmentFilter struct {
	TermID    string
	SubjectID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AssessmentSubmission records a completed attempt for an assessment.
type AssessmentSubmission struct {
	ID           string    `db:"id" json:"id"`
	AssessmentID string    `db:"assessment_id" json:"assessment_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
	Score        *float64  `db:"score" json:"score,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
