package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// ISODate is the wire format for calendar dates
const ISODate = "2006-01-02"

// Date returns a normalized calendar date (midnight UTC)
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfWeek returns the Monday of the week for the given date
func StartOfWeek(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	daysFromMonday := weekday - 1
	return StartOfDay(date.AddDate(0, 0, -daysFromMonday))
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// WeekdayToken returns the three-letter uppercase weekday token (MON..SUN)
func WeekdayToken(date time.Time) string {
	return strings.ToUpper(date.Format("Mon"))
}

// DaysInMonth returns the number of calendar days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first day of the month and the first day of the
// following month (half-open range for storage queries)
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := Date(year, month, 1)
	return start, start.AddDate(0, 1, 0)
}

// AddMonths shifts a date by the given number of months, clamping the day
// to the end of the target month (Jan 31 + 1 month = Feb 28/29)
func AddMonths(date time.Time, months int) time.Time {
	total := date.Year()*12 + int(date.Month()) - 1 + months
	year := total / 12
	month := time.Month(total%12 + 1)
	day := date.Day()
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return Date(year, month, day)
}

// ParseDate parses a calendar date in ISO 8601 form (YYYY-MM-DD)
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate formats a date in ISO 8601 form (YYYY-MM-DD)
func FormatDate(date time.Time) string {
	return date.Format(ISODate)
}
