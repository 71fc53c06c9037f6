package service

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-schedule-api/internal/models"
)

// ConflictService detects collisions between schedule entries. The checks are
// pure; persistence-aware callers feed it entries loaded per student and day.
type ConflictService struct {
	logger *zap.Logger
}

// NewConflictService constructs a ConflictService.
func NewConflictService(logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{logger: logger}
}

// DetectConflicts scans all entries pairwise within each day group and reports
// every conflict found. A single pair can produce several reports since the
// three conflict classes are independent.
func (s *ConflictService) DetectConflicts(entries []models.ScheduleEntry) models.ConflictReport {
	byDay := make(map[models.Weekday][]models.ScheduleEntry)
	for _, entry := range entries {
		byDay[entry.DayOfWeek] = append(byDay[entry.DayOfWeek], entry)
	}

	days := make([]models.Weekday, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	var conflicts []models.ScheduleConflict
	for _, day := range days {
		group := byDay[day]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				conflicts = append(conflicts, s.pairConflicts(group[i], group[j])...)
			}
		}
	}

	return models.ConflictReport{HasConflict: len(conflicts) > 0, Conflicts: conflicts}
}

// CheckNewEntry validates one proposed entry against an existing set and
// returns the first conflict found, or nil. Callers needing the exhaustive
// list must use DetectConflicts.
func (s *ConflictService) CheckNewEntry(entry models.ScheduleEntry, existing []models.ScheduleEntry) *models.ScheduleConflict {
	for _, other := range existing {
		if other.ID == entry.ID || other.DayOfWeek != entry.DayOfWeek {
			continue
		}
		if found := s.pairConflicts(entry, other); len(found) > 0 {
			return &found[0]
		}
	}
	return nil
}

// FindScheduleGaps reports expected-but-absent period numbers per day. Days
// with no entries at all are not reported; an empty day is absence of a
// schedule, not a gap in one.
func (s *ConflictService) FindScheduleGaps(entries []models.ScheduleEntry, expectedPeriods []int) []models.ScheduleGap {
	if len(expectedPeriods) == 0 {
		return nil
	}

	present := make(map[models.Weekday]map[int]bool)
	for _, entry := range entries {
		if present[entry.DayOfWeek] == nil {
			present[entry.DayOfWeek] = make(map[int]bool)
		}
		present[entry.DayOfWeek][entry.PeriodNumber] = true
	}

	days := make([]models.Weekday, 0, len(present))
	for day := range present {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	var gaps []models.ScheduleGap
	for _, day := range days {
		var missing []int
		for _, period := range expectedPeriods {
			if !present[day][period] {
				missing = append(missing, period)
			}
		}
		if len(missing) > 0 {
			gaps = append(gaps, models.ScheduleGap{Day: day, MissingPeriods: missing})
		}
	}
	return gaps
}

// pairConflicts runs the three independent checks against one pair sharing a day.
func (s *ConflictService) pairConflicts(a, b models.ScheduleEntry) []models.ScheduleConflict {
	var conflicts []models.ScheduleConflict

	if s.timeSlotsOverlap(a, b) {
		conflicts = append(conflicts, models.ScheduleConflict{
			Type:     models.ConflictTimeOverlap,
			Severity: models.ConflictTimeOverlap.Severity(),
			Day:      a.DayOfWeek,
			Message:  fmt.Sprintf("%s (%s-%s) overlaps %s (%s-%s)", a.SubjectName, a.StartTime, a.EndTime, b.SubjectName, b.StartTime, b.EndTime),
			Entries:  []models.ScheduleEntry{a, b},
		})
	}

	if a.SubjectID != "" && a.SubjectID == b.SubjectID {
		conflicts = append(conflicts, models.ScheduleConflict{
			Type:     models.ConflictDuplicateSubject,
			Severity: models.ConflictDuplicateSubject.Severity(),
			Day:      a.DayOfWeek,
			Message:  fmt.Sprintf("subject %s is scheduled twice on %s", a.SubjectName, a.DayOfWeek),
			Entries:  []models.ScheduleEntry{a, b},
		})
	}

	if a.PeriodNumber == b.PeriodNumber {
		conflicts = append(conflicts, models.ScheduleConflict{
			Type:     models.ConflictDuplicatePeriod,
			Severity: models.ConflictDuplicatePeriod.Severity(),
			Day:      a.DayOfWeek,
			Message:  fmt.Sprintf("period %d on %s is claimed by both %s and %s", a.PeriodNumber, a.DayOfWeek, a.SubjectName, b.SubjectName),
			Entries:  []models.ScheduleEntry{a, b},
		})
	}

	return conflicts
}

// timeSlotsOverlap applies the half-open interval test start1 < end2 && start2 < end1.
// Entries with malformed clock values never overlap; they are logged and skipped.
func (s *ConflictService) timeSlotsOverlap(a, b models.ScheduleEntry) bool {
	aStart, err := models.ParseClock(a.StartTime)
	if err != nil {
		s.logger.Debug("skipping overlap check", zap.String("entry_id", a.ID), zap.Error(err))
		return false
	}
	aEnd, err := models.ParseClock(a.EndTime)
	if err != nil {
		s.logger.Debug("skipping overlap check", zap.String("entry_id", a.ID), zap.Error(err))
		return false
	}
	bStart, err := models.ParseClock(b.StartTime)
	if err != nil {
		s.logger.Debug("skipping overlap check", zap.String("entry_id", b.ID), zap.Error(err))
		return false
	}
	bEnd, err := models.ParseClock(b.EndTime)
	if err != nil {
		s.logger.Debug("skipping overlap check", zap.String("entry_id", b.ID), zap.Error(err))
		return false
	}
	return aStart < bEnd && bStart < aEnd
}
