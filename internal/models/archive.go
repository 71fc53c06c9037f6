package models

import "time"

// ArchiveReason records why a schedule entry was swept into the archive.
type ArchiveReason string

const (
	ArchiveReasonPastDate  ArchiveReason = "PAST_DATE"
	ArchiveReasonCompleted ArchiveReason = "COMPLETED"
)

// ArchivedScheduleEntry is a schedule row moved out of the live table by the
// maintenance sweep.
type ArchivedScheduleEntry struct {
	ID           string        `db:"id" json:"id"`
	EntryID      string        `db:"entry_id" json:"entry_id"`
	StudentID    string        `db:"student_id" json:"student_id"`
	TermID       string        `db:"term_id" json:"term_id"`
	SubjectID    string        `db:"subject_id" json:"subject_id"`
	SubjectName  string        `db:"subject_name" json:"subject_name"`
	DayOfWeek    Weekday       `db:"day_of_week" json:"day_of_week"`
	PeriodNumber int           `db:"period_number" json:"period_number"`
	StartTime    string        `db:"start_time" json:"start_time"`
	EndTime      string        `db:"end_time" json:"end_time"`
	Completed    bool          `db:"completed" json:"completed"`
	ScheduledFor time.Time     `db:"scheduled_for" json:"scheduled_for"`
	Reason       ArchiveReason `db:"reason" json:"reason"`
	ArchivedAt   time.Time     `db:"archived_at" json:"archived_at"`
}

// ArchiveFilter describes query params for listing archived entries.
type ArchiveFilter struct {
	StudentID string
	TermID    string
	Reason    ArchiveReason
	Page      int
	PageSize  int
}

// ArchiveRunResult summarises one maintenance sweep.
type ArchiveRunResult struct {
	Scanned    int       `json:"scanned"`
	Archived   int       `json:"archived"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
