package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
)

// WeekService maps between calendar dates and 1-based, Monday-start week
// numbers relative to a term start date. All arithmetic is timezone-naive:
// inputs are truncated to their calendar date before any comparison.
type WeekService struct {
	logger *zap.Logger
}

// NewWeekService constructs a WeekService.
func NewWeekService(logger *zap.Logger) *WeekService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeekService{logger: logger}
}

// WeekNumber returns the 1-based week a date falls in. Week 1 begins on the
// Monday of the week containing termStart, so a date earlier in that same
// week still maps to week 1; dates before that Monday go negative-free to 0
// or below and are the caller's validation concern.
func (s *WeekService) WeekNumber(date, termStart time.Time) int {
	anchor := mondayOf(termStart)
	target := mondayOf(date)
	days := int(target.Sub(anchor).Hours() / 24)
	return days/7 + 1
}

// WeekDates reconstructs the Monday-Sunday span for a week number. The
// relative flags compare now against the full span: a week containing now is
// current even when now is mid-week.
func (s *WeekService) WeekDates(weekNumber int, termStart, now time.Time) (models.WeekInfo, error) {
	if weekNumber < 1 {
		return models.WeekInfo{}, appErrors.ErrValidation.With("week number must be at least 1")
	}

	weekStart := mondayOf(termStart).AddDate(0, 0, (weekNumber-1)*7)
	weekEnd := weekStart.AddDate(0, 0, 6)
	today := dateOf(now)

	info := models.WeekInfo{
		WeekNumber:    weekNumber,
		WeekStartDate: weekStart,
		WeekEndDate:   weekEnd,
	}
	switch {
	case today.Before(weekStart):
		info.IsFutureWeek = true
	case today.After(weekEnd):
		info.IsPastWeek = true
	default:
		info.IsCurrentWeek = true
	}
	return info, nil
}

// TotalWeeks counts the week-aligned spans between term start and end,
// inclusive of both boundary weeks.
func (s *WeekService) TotalWeeks(termStart, termEnd time.Time) int {
	if termEnd.Before(termStart) {
		return 0
	}
	return s.WeekNumber(termEnd, termStart)
}

// TermWeeks expands a term into its full list of week spans.
func (s *WeekService) TermWeeks(term models.Term, now time.Time) ([]models.WeekInfo, error) {
	total := s.TotalWeeks(term.StartDate, term.EndDate)
	weeks := make([]models.WeekInfo, 0, total)
	for n := 1; n <= total; n++ {
		info, err := s.WeekDates(n, term.StartDate, now)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, info)
	}
	return weeks, nil
}

// mondayOf returns midnight on the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
	d := dateOf(t)
	return d.AddDate(0, 0, -int(models.WeekdayOf(d)))
}

// dateOf truncates t to midnight in its own location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
