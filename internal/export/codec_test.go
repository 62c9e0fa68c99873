package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/username/office-tracker/internal/attendance"
	"github.com/username/office-tracker/internal/model"
	"github.com/username/office-tracker/pkg/dateutil"
)

func sampleMonth() ([]model.DayRecord, model.Settings, model.MonthSummary) {
	settings := model.DefaultSettings("alice", "US", "CA", "America/Los_Angeles")
	days := []model.DayRecord{
		{OwnerID: "alice", Date: dateutil.Date(2024, 3, 4), Status: model.StatusWFH, Notes: "standup day"},
		{OwnerID: "alice", Date: dateutil.Date(2024, 3, 5), Status: model.StatusInOffice},
		{OwnerID: "alice", Date: dateutil.Date(2024, 3, 6), Status: model.StatusInOffice, IsHoliday: true, HolidayName: "Observed Day"},
		{OwnerID: "alice", Date: dateutil.Date(2024, 3, 9), Status: model.StatusVacation},
	}
	summary := attendance.ComputeSummary(days, settings)
	return days, settings, summary
}

func TestSerializeMonth_Schema(t *testing.T) {
	days, settings, summary := sampleMonth()

	data, err := SerializeMonth(days, settings, summary)
	if err != nil {
		t.Fatalf("SerializeMonth() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if raw["version"] != "1.2" {
		t.Errorf("version = %v, want 1.2", raw["version"])
	}
	if raw["user_id"] != "alice" {
		t.Errorf("user_id = %v, want alice", raw["user_id"])
	}

	month, ok := raw["month"].(map[string]any)
	if !ok || month["year"] != float64(2024) || month["month"] != float64(3) {
		t.Errorf("month = %v, want {year:2024, month:3}", raw["month"])
	}

	for _, key := range []string{"settings", "summary", "days"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	if !strings.Contains(string(data), `"date": "2024-03-04"`) {
		t.Error("days should carry ISO 8601 dates")
	}
}

func TestRoundTrip(t *testing.T) {
	days, settings, summary := sampleMonth()

	data, err := SerializeMonth(days, settings, summary)
	if err != nil {
		t.Fatalf("SerializeMonth() error = %v", err)
	}

	parsed, err := DeserializeMonth(data)
	if err != nil {
		t.Fatalf("DeserializeMonth() error = %v", err)
	}

	if parsed.Version != SchemaVersion {
		t.Errorf("Version = %s, want %s", parsed.Version, SchemaVersion)
	}
	if parsed.Year != 2024 || parsed.Month != time.March {
		t.Errorf("month = %d-%d, want 2024-3", parsed.Year, parsed.Month)
	}
	if len(parsed.Days) != len(days) {
		t.Fatalf("days = %d, want %d", len(parsed.Days), len(days))
	}

	for i, day := range parsed.Days {
		if !day.Date.Equal(days[i].Date) {
			t.Errorf("days[%d].Date = %v, want %v", i, day.Date, days[i].Date)
		}
		if day.Status != days[i].Status {
			t.Errorf("days[%d].Status = %s, want %s", i, day.Status, days[i].Status)
		}
		if day.Notes != days[i].Notes {
			t.Errorf("days[%d].Notes = %q, want %q", i, day.Notes, days[i].Notes)
		}
		if day.HolidayName != days[i].HolidayName {
			t.Errorf("days[%d].HolidayName = %q, want %q", i, day.HolidayName, days[i].HolidayName)
		}
	}

	if parsed.Settings.RequiredPercent != settings.RequiredPercent {
		t.Errorf("Settings.RequiredPercent = %v, want %v",
			parsed.Settings.RequiredPercent, settings.RequiredPercent)
	}
	if parsed.Summary.Numerator != summary.Numerator {
		t.Errorf("Summary.Numerator = %d, want %d", parsed.Summary.Numerator, summary.Numerator)
	}
}

func TestDeserializeMonth_HolidayNameAbsentVsEmpty(t *testing.T) {
	// holiday_name missing entirely and holiday_name:"" normalize the same
	doc := `{
		"version": "1.2",
		"user_id": "alice",
		"month": {"year": 2024, "month": 3},
		"days": [
			{"date": "2024-03-04", "status": "NONE", "is_holiday": false, "notes": ""},
			{"date": "2024-03-05", "status": "NONE", "is_holiday": false, "holiday_name": "", "notes": ""}
		]
	}`

	parsed, err := DeserializeMonth([]byte(doc))
	if err != nil {
		t.Fatalf("DeserializeMonth() error = %v", err)
	}
	if parsed.Days[0].HolidayName != parsed.Days[1].HolidayName {
		t.Errorf("absent and empty holiday_name differ: %q vs %q",
			parsed.Days[0].HolidayName, parsed.Days[1].HolidayName)
	}
}

func TestDeserializeMonth_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantSub string
	}{
		{
			name:    "invalid JSON",
			input:   `{"version": "1.2",`,
			wantSub: "invalid JSON",
		},
		{
			name:    "missing version",
			input:   `{"user_id": "alice", "days": []}`,
			wantSub: `"version"`,
		},
		{
			name:    "missing days",
			input:   `{"version": "1.2", "user_id": "alice"}`,
			wantSub: `"days"`,
		},
		{
			name:    "unparsable date",
			input:   `{"version": "1.2", "days": [{"date": "03/04/2024", "status": "NONE"}]}`,
			wantSub: "days[0].date",
		},
		{
			name:    "unknown status",
			input:   `{"version": "1.2", "days": [{"date": "2024-03-04", "status": "SABBATICAL"}]}`,
			wantSub: "days[0].status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeMonth([]byte(tt.input))
			if err == nil {
				t.Fatal("DeserializeMonth() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	got := Filename("office-tracker", 2024, time.March)
	if got != "office-tracker_2024_03.json" {
		t.Errorf("Filename() = %q, want office-tracker_2024_03.json", got)
	}
}
