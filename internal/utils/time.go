package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/quitlog/internal/constants"
)

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// CombineDateAndTime combines a date string (YYYY-MM-DD) and time string (HH:MM)
// into a single time.Time in the specified timezone. An empty date means today
// and an empty time means the current wall-clock minute, both taken from now.
func CombineDateAndTime(dateStr, timeStr string, now time.Time, loc *time.Location) (time.Time, error) {
	now = now.In(loc)

	year, month, day := now.Date()
	if s := strings.TrimSpace(dateStr); s != "" {
		date, err := time.Parse(constants.DateFormat, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date format %q (expected YYYY-MM-DD): %w", s, err)
		}
		year, month, day = date.Date()
	}

	hour, minute := now.Hour(), now.Minute()
	if s := strings.TrimSpace(timeStr); s != "" {
		timeOfDay, err := ParseTime(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time format %q (expected HH:MM): %w", s, err)
		}
		hour, minute = timeOfDay.Hour(), timeOfDay.Minute()
	}

	return time.Date(year, month, day, hour, minute, 0, 0, loc), nil
}

// MonthBounds returns the first instant of the month named by monthStr
// (YYYY-MM) and the first instant of the following month.
func MonthBounds(monthStr string, loc *time.Location) (time.Time, time.Time, error) {
	m, err := time.ParseInLocation(constants.MonthFormat, monthStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", monthStr, err)
	}
	start := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), nil
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
