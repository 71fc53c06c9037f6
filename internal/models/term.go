package models

import "time"

// Term models an academic term within the institution calendar.
type Term struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TermFilter defines filters supported by term list endpoints.
type TermFilter struct {
	AcademicYear string
	IsActive     *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// WeekInfo is the Monday-to-Sunday span for a 1-based term week. Derived and
// recomputed on every query, never persisted.
type WeekInfo struct {
	WeekNumber    int       `json:"week_number"`
	WeekStartDate time.Time `json:"week_start_date"`
	WeekEndDate   time.Time `json:"week_end_date"`
	IsCurrentWeek bool      `json:"is_current_week"`
	IsPastWeek    bool      `json:"is_past_week"`
	IsFutureWeek  bool      `json:"is_future_week"`
}
