package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("MONDAY")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	day, err = ParseWeekday(" friday ")
	require.NoError(t, err)
	assert.Equal(t, Friday, day)

	_, err = ParseWeekday("FUNDAY")
	require.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	// 2024-01-01 is a Monday.
	assert.Equal(t, Monday, WeekdayOf(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Wednesday, WeekdayOf(time.Date(2024, 1, 3, 23, 59, 0, 0, time.UTC)))
}

func TestWeekdayJSON(t *testing.T) {
	data, err := json.Marshal(Thursday)
	require.NoError(t, err)
	assert.Equal(t, `"THURSDAY"`, string(data))

	var byName Weekday
	require.NoError(t, json.Unmarshal([]byte(`"tuesday"`), &byName))
	assert.Equal(t, Tuesday, byName)

	var byIndex Weekday
	require.NoError(t, json.Unmarshal([]byte(`5`), &byIndex))
	assert.Equal(t, Saturday, byIndex)

	var invalid Weekday
	require.Error(t, json.Unmarshal([]byte(`"noday"`), &invalid))
	require.Error(t, json.Unmarshal([]byte(`9`), &invalid))

	_, err = json.Marshal(Weekday(42))
	require.Error(t, err)
}

func TestWeekdayScan(t *testing.T) {
	var d Weekday
	require.NoError(t, d.Scan(int64(2)))
	assert.Equal(t, Wednesday, d)

	require.NoError(t, d.Scan([]byte("SUNDAY")))
	assert.Equal(t, Sunday, d)

	require.Error(t, d.Scan(int64(7)))
	require.Error(t, d.Scan(3.14))
}

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, minutes)

	minutes, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)

	minutes, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, minutes)

	_, err = ParseClock("24:00")
	require.Error(t, err)

	_, err = ParseClock("08:60")
	require.Error(t, err)

	_, err = ParseClock("morning")
	require.Error(t, err)

	// The whole string must be the clock value.
	_, err = ParseClock("9:30xyz")
	require.Error(t, err)

	_, err = ParseClock("09:30 ")
	require.Error(t, err)

	_, err = ParseClock("09:30:00")
	require.Error(t, err)
}
