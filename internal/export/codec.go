// Package export serializes a month's data to a stable versioned JSON
// schema, used for file backups and by API clients. The codec only
// converts; applying an imported month to the store is the caller's
// explicit action.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/username/office-tracker/internal/model"
	"github.com/username/office-tracker/pkg/dateutil"
)

// SchemaVersion is the current export schema version
const SchemaVersion = "1.2"

// MonthExport is a parsed import/export document
type MonthExport struct {
	Version  string
	OwnerID  string
	Year     int
	Month    time.Month
	Settings model.Settings
	Summary  model.MonthSummary
	Days     []model.DayRecord
}

// document is the stable wire schema
type document struct {
	Version  string             `json:"version"`
	OwnerID  string             `json:"user_id"`
	Month    monthRef           `json:"month"`
	Settings settingsDoc        `json:"settings"`
	Summary  model.MonthSummary `json:"summary"`
	Days     *[]dayDoc          `json:"days"`
}

type monthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type settingsDoc struct {
	RequiredPercent        float64  `json:"required_percent"`
	RoundingMode           string   `json:"rounding_mode"`
	CreditWeekdays         []string `json:"credit_weekdays"`
	MonFriHolidayTreatment string   `json:"monfri_holiday_treatment"`
	Country                string   `json:"country"`
	Region                 string   `json:"state"`
	Timezone               string   `json:"timezone"`
}

type dayDoc struct {
	Date        string `json:"date"`
	Status      string `json:"status"`
	IsHoliday   bool   `json:"is_holiday"`
	HolidayName string `json:"holiday_name"`
	Notes       string `json:"notes"`
}

// SerializeMonth encodes a month's records, settings and summary as an
// indented JSON document under the current schema version
func SerializeMonth(days []model.DayRecord, settings model.Settings, summary model.MonthSummary) ([]byte, error) {
	doc := document{
		Version: SchemaVersion,
		OwnerID: settings.OwnerID,
		Settings: settingsDoc{
			RequiredPercent:        settings.RequiredPercent,
			RoundingMode:           string(settings.RoundingMode),
			CreditWeekdays:         settings.CreditWeekdays,
			MonFriHolidayTreatment: string(settings.MonFriHolidayTreatment),
			Country:                settings.Country,
			Region:                 settings.Region,
			Timezone:               settings.Timezone,
		},
		Summary: summary,
	}

	if len(days) > 0 {
		doc.Month = monthRef{Year: days[0].Date.Year(), Month: int(days[0].Date.Month())}
	}

	serialized := make([]dayDoc, 0, len(days))
	for _, day := range days {
		serialized = append(serialized, dayDoc{
			Date:        dateutil.FormatDate(day.Date),
			Status:      string(day.Status),
			IsHoliday:   day.IsHoliday,
			HolidayName: day.HolidayName,
			Notes:       day.Notes,
		})
	}
	doc.Days = &serialized

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode month export: %w", err)
	}
	return out, nil
}

// DeserializeMonth parses an export document, naming the malformed field
// where possible. No store mutation happens here.
func DeserializeMonth(data []byte) (*MonthExport, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if doc.Version == "" {
		return nil, fmt.Errorf("missing required key %q", "version")
	}
	if doc.Days == nil {
		return nil, fmt.Errorf("missing required key %q", "days")
	}

	result := &MonthExport{
		Version: doc.Version,
		OwnerID: doc.OwnerID,
		Year:    doc.Month.Year,
		Month:   time.Month(doc.Month.Month),
		Settings: model.Settings{
			OwnerID:                doc.OwnerID,
			RequiredPercent:        doc.Settings.RequiredPercent,
			RoundingMode:           model.RoundingMode(doc.Settings.RoundingMode),
			CreditWeekdays:         doc.Settings.CreditWeekdays,
			MonFriHolidayTreatment: model.HolidayTreatment(doc.Settings.MonFriHolidayTreatment),
			Country:                doc.Settings.Country,
			Region:                 doc.Settings.Region,
			Timezone:               doc.Settings.Timezone,
		},
		Summary: doc.Summary,
	}

	for i, day := range *doc.Days {
		date, err := dateutil.ParseDate(day.Date)
		if err != nil {
			return nil, fmt.Errorf("days[%d].date: %w", i, err)
		}
		status := model.Status(day.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("days[%d].status: unknown status %q", i, day.Status)
		}
		result.Days = append(result.Days, model.DayRecord{
			OwnerID:     doc.OwnerID,
			Date:        date,
			Status:      status,
			IsHoliday:   day.IsHoliday,
			HolidayName: day.HolidayName,
			Notes:       day.Notes,
		})
	}

	return result, nil
}

// Filename returns the export file name convention <app>_<year>_<month>.json
func Filename(app string, year int, month time.Month) string {
	return fmt.Sprintf("%s_%d_%02d.json", app, year, int(month))
}
