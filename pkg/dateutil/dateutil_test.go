package dateutil

import (
	"testing"
	"time"
)

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "Wednesday returns Monday",
			input:    time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), // Wednesday
			expected: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),  // Monday
		},
		{
			name:     "Monday returns same Monday",
			input:    time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Sunday returns previous Monday",
			input:    time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StartOfWeek(tt.input)
			if !result.Equal(tt.expected) {
				t.Errorf("StartOfWeek(%v) = %v, want %v",
					tt.input.Format("2006-01-02 Mon"),
					result.Format("2006-01-02 Mon"),
					tt.expected.Format("2006-01-02 Mon"))
			}
		})
	}
}

func TestWeekdayToken(t *testing.T) {
	tests := []struct {
		date  time.Time
		token string
	}{
		{Date(2024, 3, 4), "MON"},
		{Date(2024, 3, 5), "TUE"},
		{Date(2024, 3, 6), "WED"},
		{Date(2024, 3, 7), "THU"},
		{Date(2024, 3, 8), "FRI"},
		{Date(2024, 3, 9), "SAT"},
		{Date(2024, 3, 10), "SUN"},
	}

	for _, tt := range tests {
		if got := WeekdayToken(tt.date); got != tt.token {
			t.Errorf("WeekdayToken(%s) = %q, want %q", FormatDate(tt.date), got, tt.token)
		}
	}
}

func TestIsWeekendIsWeekday(t *testing.T) {
	sat := Date(2024, 3, 9)
	wed := Date(2024, 3, 6)

	if !IsWeekend(sat) || IsWeekday(sat) {
		t.Errorf("Saturday should be weekend, not weekday")
	}
	if IsWeekend(wed) || !IsWeekday(wed) {
		t.Errorf("Wednesday should be weekday, not weekend")
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29}, // leap year
		{2023, time.February, 28},
		{2024, time.March, 31},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2024, time.December)

	if !start.Equal(Date(2024, time.December, 1)) {
		t.Errorf("start = %v, want 2024-12-01", start)
	}
	if !end.Equal(Date(2025, time.January, 1)) {
		t.Errorf("end = %v, want 2025-01-01 (year rollover)", end)
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		months int
		want   time.Time
	}{
		{"forward one", Date(2024, 3, 15), 1, Date(2024, 4, 15)},
		{"back one", Date(2024, 3, 15), -1, Date(2024, 2, 15)},
		{"year rollover forward", Date(2024, 12, 10), 1, Date(2025, 1, 10)},
		{"year rollover back", Date(2024, 1, 10), -1, Date(2023, 12, 10)},
		{"clamp to leap February", Date(2024, 1, 31), 1, Date(2024, 2, 29)},
		{"clamp to short month", Date(2024, 3, 31), 1, Date(2024, 4, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.date, tt.months)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonths(%s, %d) = %s, want %s",
					FormatDate(tt.date), tt.months, FormatDate(got), FormatDate(tt.want))
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-08")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if !got.Equal(Date(2024, 3, 8)) {
		t.Errorf("ParseDate() = %v, want 2024-03-08", got)
	}

	if _, err := ParseDate("03/08/2024"); err == nil {
		t.Error("ParseDate() expected error for non-ISO date, got nil")
	}
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("ParseDate() expected error for month 13, got nil")
	}
}
