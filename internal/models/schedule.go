package models

import (
	"fmt"
	"time"
)

// ScheduleEntry is one lesson/period slot in a student's weekly timetable.
// StartTime and EndTime are wall-clock values within the entry's day ("HH:MM").
type ScheduleEntry struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	TermID       string    `db:"term_id" json:"term_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	DayOfWeek    Weekday   `db:"day_of_week" json:"day_of_week"`
	PeriodNumber int       `db:"period_number" json:"period_number"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	Completed    bool      `db:"completed" json:"completed"`
	ScheduledFor time.Time `db:"scheduled_for" json:"scheduled_for"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter describes query params for listing schedule entries.
type ScheduleFilter struct {
	StudentID string
	TermID    string
	SubjectID string
	DayOfWeek *Weekday
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ConflictType names the independent conflict classes checked per day.
type ConflictType string

const (
	ConflictTimeOverlap      ConflictType = "TIME_OVERLAP"
	ConflictDuplicateSubject ConflictType = "DUPLICATE_SUBJECT"
	ConflictDuplicatePeriod  ConflictType = "DUPLICATE_PERIOD"
)

// ConflictSeverity ranks how disruptive a detected conflict is.
type ConflictSeverity string

const (
	SeverityHigh   ConflictSeverity = "HIGH"
	SeverityMedium ConflictSeverity = "MEDIUM"
)

// Severity returns the fixed severity assigned to each conflict class.
func (t ConflictType) Severity() ConflictSeverity {
	if t == ConflictDuplicateSubject {
		return SeverityMedium
	}
	return SeverityHigh
}

// ScheduleConflict describes one detected collision between two entries.
type ScheduleConflict struct {
	Type     ConflictType     `json:"type"`
	Severity ConflictSeverity `json:"severity"`
	Day      Weekday          `json:"day"`
	Message  string           `json:"message"`
	Entries  []ScheduleEntry  `json:"entries"`
}

// ConflictReport aggregates every conflict found in a schedule scan.
type ConflictReport struct {
	HasConflict bool               `json:"has_conflict"`
	Conflicts   []ScheduleConflict `json:"conflicts,omitempty"`
}

// ScheduleGap lists expected-but-absent period numbers for one day.
type ScheduleGap struct {
	Day            Weekday `json:"day"`
	MissingPeriods []int   `json:"missing_periods"`
}

// ParseClock converts an "HH:MM" wall-clock value into minutes after midnight.
// The whole string must be a valid clock value; trailing text is rejected.
func ParseClock(raw string) (int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	return t.Hour()*60 + t.Minute(), nil
}
