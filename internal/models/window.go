package models

import "time"

// WindowState classifies a point in time against an assessment window.
type WindowState string

const (
	WindowNotStarted  WindowState = "NOT_STARTED"
	WindowActive      WindowState = "ACTIVE"
	WindowGracePeriod WindowState = "GRACE_PERIOD"
	WindowExpired     WindowState = "EXPIRED"
)

// UrgencyLevel grades how close an active window is to closing.
type UrgencyLevel string

const (
	UrgencyNone     UrgencyLevel = "NONE"
	UrgencyLow      UrgencyLevel = "LOW"
	UrgencyMedium   UrgencyLevel = "MEDIUM"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyCritical UrgencyLevel = "CRITICAL"
)

// TimeWindow is the period during which an assessment may be attempted.
// It is a value constructed from an assessment record and never mutated here.
type TimeWindow struct {
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	GracePeriodMinutes int       `json:"grace_period_minutes"`
}

// GraceEnd returns the instant the grace period closes. Equal to EndTime when
// no grace period is configured.
func (w TimeWindow) GraceEnd() time.Time {
	if w.GracePeriodMinutes <= 0 {
		return w.EndTime
	}
	return w.EndTime.Add(time.Duration(w.GracePeriodMinutes) * time.Minute)
}

// WindowStatus is the full classification of a window at a given instant.
type WindowStatus struct {
	State             WindowState  `json:"state"`
	CheckedAt         time.Time    `json:"checked_at"`
	WindowStart       time.Time    `json:"window_start"`
	WindowEnd         time.Time    `json:"window_end"`
	GraceEnd          time.Time    `json:"grace_end"`
	MinutesUntilStart int64        `json:"minutes_until_start,omitempty"`
	MinutesRemaining  int64        `json:"minutes_remaining,omitempty"`
	Urgency           UrgencyLevel `json:"urgency"`
}

// WindowConfigReport lists every violation found in a window configuration.
// An empty Violations slice means the window is well formed.
type WindowConfigReport struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// AccessStatus is the status code attached to an assessment access decision.
type AccessStatus string

const (
	AccessAllowed          AccessStatus = "ALLOWED"
	AccessNotYetOpen       AccessStatus = "NOT_YET_OPEN"
	AccessGracePeriod      AccessStatus = "GRACE_PERIOD"
	AccessExpired          AccessStatus = "EXPIRED"
	AccessAlreadySubmitted AccessStatus = "ALREADY_SUBMITTED"
)

// AccessDecision reports whether a student may open an assessment right now.
type AccessDecision struct {
	CanAccess         bool         `json:"can_access"`
	Status            AccessStatus `json:"status"`
	Reason            string       `json:"reason,omitempty"`
	WindowStart       time.Time    `json:"window_start"`
	WindowEnd         time.Time    `json:"window_end"`
	CheckedAt         time.Time    `json:"checked_at"`
	MinutesUntilOpen  int64        `json:"minutes_until_open,omitempty"`
	MinutesRemaining  int64        `json:"minutes_remaining,omitempty"`
	GracePeriodActive bool         `json:"grace_period_active"`
}
