package attendance

import (
	"math"
	"time"

	"github.com/username/office-tracker/internal/model"
	"github.com/username/office-tracker/pkg/dateutil"
)

// CreditedHoliday reports whether a public holiday falling on the given
// date is credited toward attendance under the owner's policy.
// Tue/Wed/Thu (the default credit set) are always credited; Mon/Fri are
// credited only under the "credit" treatment; weekends never.
func CreditedHoliday(date time.Time, settings model.Settings) bool {
	token := dateutil.WeekdayToken(date)

	if settings.HasCreditWeekday(token) {
		return true
	}

	if token == "MON" || token == "FRI" {
		return settings.MonFriHolidayTreatment == model.TreatmentCredit
	}

	return false
}

// ComputeSummary derives the monthly compliance summary from a month's day
// records and the owner's settings. Pure function: deterministic, no side
// effects, no retained references to the inputs.
func ComputeSummary(days []model.DayRecord, settings model.Settings) model.MonthSummary {
	summary := model.MonthSummary{
		StatusCounts: make(map[model.Status]int),
	}

	for _, day := range days {
		summary.StatusCounts[day.Status]++

		if dateutil.IsWeekday(day.Date) {
			summary.Workdays++

			// OR logic: a day credits at most once even when both the
			// status and a credited holiday apply.
			credit := 0
			if day.Status.CountsAsOffice() {
				credit = 1
			}
			if day.IsHoliday && CreditedHoliday(day.Date, settings) {
				credit = 1
				summary.CreditedHolidays++
			}
			summary.Numerator += credit
		} else if day.Status.CountsAsOffice() {
			// Weekends: status credit only, holiday credit never applies
			summary.Numerator++
		}
	}

	// Weekends never increase the denominator
	summary.Denominator = summary.Workdays

	if summary.Denominator > 0 {
		summary.RequiredDays = roundRequired(
			settings.RequiredPercent*float64(summary.Denominator),
			settings.RoundingMode,
		)
		summary.PercentAchieved = float64(summary.Numerator) / float64(summary.Denominator) * 100
	}

	summary.Balance = summary.Numerator - summary.RequiredDays

	return summary
}

// roundRequired rounds the exact required-days value per the configured mode
func roundRequired(exact float64, mode model.RoundingMode) int {
	switch mode {
	case model.RoundFloor:
		return int(math.Floor(exact))
	case model.RoundHalfUp:
		// Half away from zero at the ones place
		return int(math.Round(exact))
	default: // ceil
		return int(math.Ceil(exact))
	}
}
