package model

// Status represents the attendance status of a single day
type Status string

const (
	StatusNone         Status = "NONE"
	StatusWFH          Status = "WFH"
	StatusInOffice     Status = "IN_OFFICE"
	StatusVacation     Status = "VACATION"
	StatusBiohub       Status = "BIOHUB"
	StatusTraining     Status = "TRAINING"
	StatusOtherHoliday Status = "OTHER_HOLIDAY"
)

// statusCycle is the order the UI steps through when a day is clicked
var statusCycle = []Status{
	StatusNone,
	StatusWFH,
	StatusInOffice,
	StatusVacation,
	StatusBiohub,
	StatusTraining,
	StatusOtherHoliday,
}

// AllStatuses returns every valid status in cycle order
func AllStatuses() []Status {
	out := make([]Status, len(statusCycle))
	copy(out, statusCycle)
	return out
}

// Valid reports whether s is one of the closed set of statuses
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusWFH, StatusInOffice, StatusVacation,
		StatusBiohub, StatusTraining, StatusOtherHoliday:
		return true
	}
	return false
}

// CountsAsOffice reports whether the status credits attendance on its own.
// WFH and NONE never credit.
func (s Status) CountsAsOffice() bool {
	switch s {
	case StatusInOffice, StatusVacation, StatusBiohub, StatusTraining, StatusOtherHoliday:
		return true
	}
	return false
}

// NextStatus returns the status that follows s in the edit cycle.
// Unknown statuses reset to NONE.
func NextStatus(s Status) Status {
	for i, cur := range statusCycle {
		if cur == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return StatusNone
}
