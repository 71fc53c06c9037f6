package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekday is the closed day-of-week enumeration shared by every scheduling
// module. Monday is day 0; no other week anchor is supported.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"MONDAY",
	"TUESDAY",
	"WEDNESDAY",
	"THURSDAY",
	"FRIDAY",
	"SATURDAY",
	"SUNDAY",
}

// ParseWeekday converts a day name (case-insensitive) into a Weekday.
func ParseWeekday(raw string) (Weekday, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for i, candidate := range weekdayNames {
		if candidate == name {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

// WeekdayOf maps a calendar date to its Monday-based Weekday.
func WeekdayOf(t time.Time) Weekday {
	// time.Weekday counts from Sunday; shift so Monday lands on 0.
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// Valid reports whether d is one of the seven defined days.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the canonical upper-case day name.
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("WEEKDAY(%d)", int(d))
	}
	return weekdayNames[d]
}

// MarshalJSON encodes the weekday as its canonical name.
func (d Weekday) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts either a day name or a Monday-based index.
func (d *Weekday) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, perr := ParseWeekday(name)
		if perr != nil {
			return perr
		}
		*d = parsed
		return nil
	}
	var idx int
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("weekday must be a name or index: %w", err)
	}
	candidate := Weekday(idx)
	if !candidate.Valid() {
		return fmt.Errorf("weekday index %d out of range", idx)
	}
	*d = candidate
	return nil
}

// Value stores the weekday as its integer index.
func (d Weekday) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return int64(d), nil
}

// Scan reads the weekday back from an integer or textual column.
func (d *Weekday) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		candidate := Weekday(v)
		if !candidate.Valid() {
			return fmt.Errorf("weekday index %d out of range", v)
		}
		*d = candidate
		return nil
	case []byte:
		parsed, err := ParseWeekday(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseWeekday(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Weekday", src)
	}
}
