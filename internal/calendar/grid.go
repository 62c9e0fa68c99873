package calendar

import (
	"fmt"
	"time"

	"github.com/username/office-tracker/pkg/dateutil"
)

// Week is a Monday-first row of seven day slots. In a padded grid a zero
// time.Time marks a slot that falls outside the month.
type Week [7]time.Time

// MonthGrid generates the calendar grid for the given month: an ordered
// slice of weeks, each with seven slots, padded with zero values for days
// that belong to the adjacent months. Pure function.
func MonthGrid(year int, month time.Month) ([]Week, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d: must be 1-12", month)
	}

	first := dateutil.Date(year, month, 1)
	daysInMonth := dateutil.DaysInMonth(year, month)

	// Offset of the first day within a Monday-first week
	lead := (int(first.Weekday()) + 6) % 7

	var weeks []Week
	var current Week
	slot := lead

	for day := 1; day <= daysInMonth; day++ {
		current[slot] = dateutil.Date(year, month, day)
		slot++
		if slot == 7 {
			weeks = append(weeks, current)
			current = Week{}
			slot = 0
		}
	}
	if slot > 0 {
		weeks = append(weeks, current)
	}

	return weeks, nil
}

// WeekSlices generates the same weeks as MonthGrid but fills every slot
// with a real date, spilling into the adjacent months instead of padding.
// Used by the week-at-a-time view.
func WeekSlices(year int, month time.Month) ([]Week, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d: must be 1-12", month)
	}

	first := dateutil.Date(year, month, 1)
	last := dateutil.Date(year, month, dateutil.DaysInMonth(year, month))

	var weeks []Week
	for cursor := dateutil.StartOfWeek(first); !cursor.After(last); cursor = cursor.AddDate(0, 0, 7) {
		var week Week
		for i := 0; i < 7; i++ {
			week[i] = cursor.AddDate(0, 0, i)
		}
		weeks = append(weeks, week)
	}

	return weeks, nil
}
