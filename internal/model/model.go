package model

import "time"

// RoundingMode controls how the required-days fraction is rounded
type RoundingMode string

const (
	RoundCeil   RoundingMode = "ceil"
	RoundFloor  RoundingMode = "floor"
	RoundHalfUp RoundingMode = "round_half_up"
)

// Valid reports whether m is a known rounding mode
func (m RoundingMode) Valid() bool {
	switch m {
	case RoundCeil, RoundFloor, RoundHalfUp:
		return true
	}
	return false
}

// HolidayTreatment controls how Mon/Fri public holidays are credited
type HolidayTreatment string

const (
	TreatmentNeutral HolidayTreatment = "neutral"
	TreatmentExclude HolidayTreatment = "exclude"
	TreatmentCredit  HolidayTreatment = "credit"
)

// Valid reports whether t is a known treatment
func (t HolidayTreatment) Valid() bool {
	switch t {
	case TreatmentNeutral, TreatmentExclude, TreatmentCredit:
		return true
	}
	return false
}

// DayRecord is one owner's attendance record for a single calendar day.
// At most one record exists per (owner, date); records are never deleted.
type DayRecord struct {
	OwnerID     string    `json:"owner_id"`
	Date        time.Time `json:"date"`
	Status      Status    `json:"status"`
	IsHoliday   bool      `json:"is_holiday"`
	HolidayName string    `json:"holiday_name"`
	Notes       string    `json:"notes"`
}

// Settings is the per-owner attendance policy. Exactly one row per owner.
type Settings struct {
	OwnerID                string           `json:"owner_id"`
	RequiredPercent        float64          `json:"required_percent"`
	RoundingMode           RoundingMode     `json:"rounding_mode"`
	CreditWeekdays         []string         `json:"credit_weekdays"`
	MonFriHolidayTreatment HolidayTreatment `json:"monfri_holiday_treatment"`
	Country                string           `json:"country"`
	Region                 string           `json:"state"`
	Timezone               string           `json:"timezone"`
}

// DefaultSettings returns the documented first-access defaults for an owner.
// Country, region and timezone come from process-wide configuration.
func DefaultSettings(owner, country, region, timezone string) Settings {
	return Settings{
		OwnerID:                owner,
		RequiredPercent:        0.60,
		RoundingMode:           RoundCeil,
		CreditWeekdays:         []string{"TUE", "WED", "THU"},
		MonFriHolidayTreatment: TreatmentNeutral,
		Country:                country,
		Region:                 region,
		Timezone:               timezone,
	}
}

// HasCreditWeekday reports whether the given weekday token (MON..SUN)
// is in the credited set.
func (s Settings) HasCreditWeekday(token string) bool {
	for _, t := range s.CreditWeekdays {
		if t == token {
			return true
		}
	}
	return false
}

// MonthSummary is the derived compliance summary for one month.
// Recomputed on every read, never persisted.
type MonthSummary struct {
	Workdays         int            `json:"workdays"`
	Denominator      int            `json:"denominator"`
	Numerator        int            `json:"numerator"`
	RequiredDays     int            `json:"required_days"`
	Balance          int            `json:"balance"`
	PercentAchieved  float64        `json:"percent_achieved"`
	StatusCounts     map[Status]int `json:"status_counts"`
	CreditedHolidays int            `json:"credited_holidays"`
}

// DayPatch is a partial update to a day record. Nil fields are left untouched.
type DayPatch struct {
	Status      *Status `json:"status,omitempty"`
	IsHoliday   *bool   `json:"is_holiday,omitempty"`
	HolidayName *string `json:"holiday_name,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// SettingsPatch is a partial update to settings. Nil fields are left
// untouched; CreditWeekdays replaces the whole set when non-nil.
type SettingsPatch struct {
	RequiredPercent        *float64          `json:"required_percent,omitempty"`
	RoundingMode           *RoundingMode     `json:"rounding_mode,omitempty"`
	CreditWeekdays         []string          `json:"credit_weekdays,omitempty"`
	MonFriHolidayTreatment *HolidayTreatment `json:"monfri_holiday_treatment,omitempty"`
	Country                *string           `json:"country,omitempty"`
	Region                 *string           `json:"state,omitempty"`
	Timezone               *string           `json:"timezone,omitempty"`
}

// SeedPolicy maps weekdays to the status a freshly seeded record receives.
// Missing weekdays seed as NONE.
type SeedPolicy map[time.Weekday]Status

// StatusFor returns the seed status for the given date
func (p SeedPolicy) StatusFor(date time.Time) Status {
	if p == nil {
		return StatusNone
	}
	if s, ok := p[date.Weekday()]; ok {
		return s
	}
	return StatusNone
}

// PresetSeedPolicy is the weekday preset applied to the distinguished demo
// owner: Mon/Fri work from home, Tue-Thu in office. Weekends seed as NONE.
var PresetSeedPolicy = SeedPolicy{
	time.Monday:    StatusWFH,
	time.Tuesday:   StatusInOffice,
	time.Wednesday: StatusInOffice,
	time.Thursday:  StatusInOffice,
	time.Friday:    StatusWFH,
}
