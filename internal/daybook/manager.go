package daybook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/office-tracker/internal/calendar"
	"github.com/username/office-tracker/internal/holiday"
	"github.com/username/office-tracker/internal/model"
	"github.com/username/office-tracker/internal/store"
	"github.com/username/office-tracker/pkg/dateutil"
)

// maxRangeDays caps bulk date-range operations
const maxRangeDays = 365

// ErrInvalidRange marks a rejected date-range validation
var ErrInvalidRange = errors.New("invalid date range")

// Defaults holds the process-wide values seeded into fresh settings rows
type Defaults struct {
	Country  string
	Region   string
	Timezone string
}

// Manager owns the day-record and settings lifecycle: month reads with
// auto-seed and backfill, atomic edits and bulk operations.
type Manager struct {
	store    store.Store
	oracle   holiday.Oracle
	defaults Defaults
	policies map[string]model.SeedPolicy
	logger   *zap.Logger
}

// NewManager creates a Manager. policies maps owner ids to their seeding
// policy; owners without an entry seed every day as NONE.
func NewManager(st store.Store, oracle holiday.Oracle, defaults Defaults, policies map[string]model.SeedPolicy, logger *zap.Logger) *Manager {
	if oracle == nil {
		oracle = holiday.NewNoopOracle()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    st,
		oracle:   oracle,
		defaults: defaults,
		policies: policies,
		logger:   logger,
	}
}

// MonthView returns one record per calendar day of the month, ordered by
// date, together with the settings that applied to the read. Settings are
// loaded once and shared between seeding and the caller's summary.
// This read has a documented side effect ("read-repair"): a month never
// seen before is seeded in full, and individual missing days are
// backfilled. Both paths use conflict-ignoring inserts, so concurrent
// readers of the same month cannot create duplicates.
func (m *Manager) MonthView(ctx context.Context, owner string, year int, month time.Month) ([]model.DayRecord, model.Settings, error) {
	settings, err := m.GetSettings(ctx, owner)
	if err != nil {
		m.logger.Warn("Falling back to default settings",
			zap.String("owner", owner),
			zap.Error(err))
	}

	days, err := m.monthDays(ctx, owner, year, month, settings)
	return days, settings, err
}

// GetMonthDays is MonthView for callers that do not need the settings
func (m *Manager) GetMonthDays(ctx context.Context, owner string, year int, month time.Month) ([]model.DayRecord, error) {
	days, _, err := m.MonthView(ctx, owner, year, month)
	return days, err
}

func (m *Manager) monthDays(ctx context.Context, owner string, year int, month time.Month, settings model.Settings) ([]model.DayRecord, error) {
	grid, err := calendar.MonthGrid(year, month)
	if err != nil {
		return nil, err
	}

	from, to := dateutil.MonthBounds(year, month)
	existing, err := m.store.DaysInRange(ctx, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load month days: %w", err)
	}

	missing := missingDates(grid, existing)
	if len(missing) == 0 {
		return existing, nil
	}

	holidays := m.lookupHolidays(ctx, settings, year)

	// A month with no records at all is seeded under the owner's policy;
	// gaps in an already-seeded month backfill as NONE.
	var policy model.SeedPolicy
	if len(existing) == 0 {
		policy = m.policies[owner]
	}

	records := make([]model.DayRecord, 0, len(missing))
	for _, date := range missing {
		status := model.StatusNone
		if dateutil.IsWeekday(date) {
			status = policy.StatusFor(date)
		}
		name, isHoliday := holidays.NameFor(date)
		records = append(records, model.DayRecord{
			OwnerID:     owner,
			Date:        date,
			Status:      status,
			IsHoliday:   isHoliday,
			HolidayName: name,
		})
	}

	inserted, err := m.store.InsertDays(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to seed month: %w", err)
	}
	m.logger.Info("Month seeded",
		zap.String("owner", owner),
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("missing", len(missing)),
		zap.Int("inserted", inserted))

	// Re-read so the caller sees the stored rows in order, including any
	// written by a concurrent seeder
	return m.store.DaysInRange(ctx, owner, from, to)
}

// UpsertDay merges the patch into the owner's record for the given date,
// creating the record when absent. At most one record per (owner, date).
func (m *Manager) UpsertDay(ctx context.Context, owner string, date time.Time, patch model.DayPatch) error {
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("invalid status %q", *patch.Status)
	}
	if err := m.store.UpsertDay(ctx, owner, date, patch); err != nil {
		return fmt.Errorf("failed to update day: %w", err)
	}
	return nil
}

// BulkSetVacation sets VACATION on every existing record in the inclusive
// range, weekends included, and returns the number of affected records.
// Records are never created here; that is the read path's job.
func (m *Manager) BulkSetVacation(ctx context.Context, owner string, start, end time.Time) (int, error) {
	if err := ValidateRange(start, end); err != nil {
		return 0, err
	}

	n, err := m.store.SetStatusRange(ctx, owner, start, end, model.StatusVacation)
	if err != nil {
		return 0, fmt.Errorf("failed to set vacation range: %w", err)
	}

	m.logger.Info("Vacation range set",
		zap.String("owner", owner),
		zap.String("start", dateutil.FormatDate(start)),
		zap.String("end", dateutil.FormatDate(end)),
		zap.Int("affected", n))
	return n, nil
}

// GetSettings returns the owner's settings, creating the documented
// defaults on first access. When storage fails the in-memory defaults are
// returned alongside the error so callers can keep rendering.
func (m *Manager) GetSettings(ctx context.Context, owner string) (model.Settings, error) {
	defaults := model.DefaultSettings(owner, m.defaults.Country, m.defaults.Region, m.defaults.Timezone)

	settings, err := m.store.GetSettings(ctx, owner)
	if err == nil {
		return *settings, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return defaults, fmt.Errorf("failed to load settings: %w", err)
	}

	if _, err := m.store.InsertSettings(ctx, defaults); err != nil {
		return defaults, fmt.Errorf("failed to create default settings: %w", err)
	}
	m.logger.Info("Default settings created", zap.String("owner", owner))

	// Re-read in case a concurrent session created the row first
	settings, err = m.store.GetSettings(ctx, owner)
	if err != nil {
		return defaults, fmt.Errorf("failed to reload settings: %w", err)
	}
	return *settings, nil
}

// UpsertSettings validates and merges a partial settings update
func (m *Manager) UpsertSettings(ctx context.Context, owner string, patch model.SettingsPatch) error {
	if patch.RequiredPercent != nil && (*patch.RequiredPercent < 0 || *patch.RequiredPercent > 1) {
		return fmt.Errorf("required_percent %v out of range [0, 1]", *patch.RequiredPercent)
	}
	if patch.RoundingMode != nil && !patch.RoundingMode.Valid() {
		return fmt.Errorf("invalid rounding_mode %q", *patch.RoundingMode)
	}
	if patch.MonFriHolidayTreatment != nil && !patch.MonFriHolidayTreatment.Valid() {
		return fmt.Errorf("invalid monfri_holiday_treatment %q", *patch.MonFriHolidayTreatment)
	}
	if patch.CreditWeekdays != nil {
		normalized, err := NormalizeWeekdayTokens(patch.CreditWeekdays)
		if err != nil {
			return err
		}
		patch.CreditWeekdays = normalized
	}

	defaults := model.DefaultSettings(owner, m.defaults.Country, m.defaults.Region, m.defaults.Timezone)
	if err := m.store.UpsertSettings(ctx, owner, defaults, patch); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// ValidateRange rejects inverted ranges and spans longer than a year
func ValidateRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidRange,
			dateutil.FormatDate(start), dateutil.FormatDate(end))
	}
	if end.After(start.AddDate(0, 0, maxRangeDays)) {
		return fmt.Errorf("%w: span exceeds %d days", ErrInvalidRange, maxRangeDays)
	}
	return nil
}

// NormalizeWeekdayTokens uppercases, deduplicates and validates a
// credit-weekday set. Only MON..FRI are accepted.
func NormalizeWeekdayTokens(tokens []string) ([]string, error) {
	valid := map[string]bool{"MON": true, "TUE": true, "WED": true, "THU": true, "FRI": true}
	seen := make(map[string]bool)
	out := make([]string, 0, len(tokens))

	for _, token := range tokens {
		token = strings.ToUpper(strings.TrimSpace(token))
		if !valid[token] {
			return nil, fmt.Errorf("invalid credit weekday %q", token)
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out, nil
}

// missingDates returns the grid dates that have no record yet, in order
func missingDates(grid []calendar.Week, existing []model.DayRecord) []time.Time {
	have := make(map[string]bool, len(existing))
	for _, rec := range existing {
		have[dateutil.FormatDate(rec.Date)] = true
	}

	var missing []time.Time
	for _, week := range grid {
		for _, date := range week {
			if date.IsZero() || have[dateutil.FormatDate(date)] {
				continue
			}
			missing = append(missing, date)
		}
	}
	return missing
}

// lookupHolidays queries the oracle, degrading to "no holidays known" on
// any failure
func (m *Manager) lookupHolidays(ctx context.Context, settings model.Settings, year int) holiday.Map {
	holidays, err := m.oracle.HolidaysFor(ctx, settings.Country, settings.Region, year)
	if err != nil {
		m.logger.Warn("Holiday lookup failed, treating all days as non-holidays",
			zap.String("country", settings.Country),
			zap.Int("year", year),
			zap.Error(err))
		return holiday.Map{}
	}
	return holidays
}
