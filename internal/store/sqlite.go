package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/username/office-tracker/internal/model"
	"github.com/username/office-tracker/pkg/dateutil"
)

// SQLiteStore implements Store on a local SQLite database. It stands in
// for the hosted relational data service behind the same contract.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent readers while another session writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	// Writers from other connections wait instead of failing with SQLITE_BUSY
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite store opened", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			id                       INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id                  TEXT NOT NULL UNIQUE,
			required_percent         REAL NOT NULL,
			rounding_mode            TEXT NOT NULL,
			credit_weekdays_json     TEXT NOT NULL,
			monfri_holiday_treatment TEXT NOT NULL,
			country                  TEXT NOT NULL DEFAULT '',
			state                    TEXT NOT NULL DEFAULT '',
			timezone                 TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS days (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      TEXT NOT NULL,
			date         TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'NONE',
			is_holiday   INTEGER NOT NULL DEFAULT 0,
			holiday_name TEXT NOT NULL DEFAULT '',
			notes        TEXT NOT NULL DEFAULT '',
			UNIQUE(user_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_days_user_date ON days(user_id, date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// DaysInRange returns an owner's records with from <= date < to, ordered by date
func (s *SQLiteStore) DaysInRange(ctx context.Context, owner string, from, to time.Time) ([]model.DayRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, date, status, is_holiday, holiday_name, notes
		 FROM days WHERE user_id = ? AND date >= ? AND date < ?
		 ORDER BY date`,
		owner, dateutil.FormatDate(from), dateutil.FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	defer rows.Close()

	var days []model.DayRecord
	for rows.Next() {
		var rec model.DayRecord
		var dateStr string
		if err := rows.Scan(&rec.OwnerID, &dateStr, &rec.Status, &rec.IsHoliday, &rec.HolidayName, &rec.Notes); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		rec.Date, err = dateutil.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("stored date: %w", err)
		}
		days = append(days, rec)
	}
	return days, rows.Err()
}

// InsertDays inserts the given records, skipping (owner, date) pairs that
// already exist. Safe to race with other seeders.
func (s *SQLiteStore) InsertDays(ctx context.Context, days []model.DayRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO days (user_id, date, status, is_holiday, holiday_name, notes)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range days {
		res, err := stmt.ExecContext(ctx,
			rec.OwnerID, dateutil.FormatDate(rec.Date), string(rec.Status),
			rec.IsHoliday, rec.HolidayName, rec.Notes)
		if err != nil {
			return 0, fmt.Errorf("insert day %s: %w", dateutil.FormatDate(rec.Date), err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// UpsertDay merges the patch into the (owner, date) record in a single
// atomic statement. The insert arm carries defaults for unpatched fields.
func (s *SQLiteStore) UpsertDay(ctx context.Context, owner string, date time.Time, patch model.DayPatch) error {
	rec := model.DayRecord{Status: model.StatusNone}
	var sets []string

	if patch.Status != nil {
		rec.Status = *patch.Status
		sets = append(sets, "status = excluded.status")
	}
	if patch.IsHoliday != nil {
		rec.IsHoliday = *patch.IsHoliday
		sets = append(sets, "is_holiday = excluded.is_holiday")
	}
	if patch.HolidayName != nil {
		rec.HolidayName = *patch.HolidayName
		sets = append(sets, "holiday_name = excluded.holiday_name")
	}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
		sets = append(sets, "notes = excluded.notes")
	}

	query := `INSERT INTO days (user_id, date, status, is_holiday, holiday_name, notes)
		VALUES (?, ?, ?, ?, ?, ?)`
	if len(sets) == 0 {
		query += ` ON CONFLICT(user_id, date) DO NOTHING`
	} else {
		query += ` ON CONFLICT(user_id, date) DO UPDATE SET ` + strings.Join(sets, ", ")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, query,
		owner, dateutil.FormatDate(date), string(rec.Status),
		rec.IsHoliday, rec.HolidayName, rec.Notes)
	if err != nil {
		return fmt.Errorf("upsert day %s: %w", dateutil.FormatDate(date), err)
	}
	return nil
}

// SetStatusRange sets the status on every existing record in the
// inclusive range and returns the affected row count
func (s *SQLiteStore) SetStatusRange(ctx context.Context, owner string, start, end time.Time, status model.Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE days SET status = ? WHERE user_id = ? AND date >= ? AND date <= ?`,
		string(status), owner, dateutil.FormatDate(start), dateutil.FormatDate(end))
	if err != nil {
		return 0, fmt.Errorf("update range: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// GetSettings returns the owner's settings row, or ErrNotFound
func (s *SQLiteStore) GetSettings(ctx context.Context, owner string) (*model.Settings, error) {
	var settings model.Settings
	var weekdaysJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, required_percent, rounding_mode, credit_weekdays_json,
		        monfri_holiday_treatment, country, state, timezone
		 FROM settings WHERE user_id = ?`, owner).
		Scan(&settings.OwnerID, &settings.RequiredPercent, &settings.RoundingMode,
			&weekdaysJSON, &settings.MonFriHolidayTreatment,
			&settings.Country, &settings.Region, &settings.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}

	if err := json.Unmarshal([]byte(weekdaysJSON), &settings.CreditWeekdays); err != nil {
		return nil, fmt.Errorf("parse credit_weekdays_json: %w", err)
	}
	return &settings, nil
}

// InsertSettings inserts a settings row unless the owner already has one
func (s *SQLiteStore) InsertSettings(ctx context.Context, settings model.Settings) (bool, error) {
	weekdaysJSON, err := json.Marshal(settings.CreditWeekdays)
	if err != nil {
		return false, fmt.Errorf("marshal credit weekdays: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (user_id, required_percent, rounding_mode, credit_weekdays_json,
		                       monfri_holiday_treatment, country, state, timezone)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		settings.OwnerID, settings.RequiredPercent, string(settings.RoundingMode),
		string(weekdaysJSON), string(settings.MonFriHolidayTreatment),
		settings.Country, settings.Region, settings.Timezone)
	if err != nil {
		return false, fmt.Errorf("insert settings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpsertSettings merges the patch into the owner's settings row in one
// atomic statement; the insert arm carries the provided defaults
func (s *SQLiteStore) UpsertSettings(ctx context.Context, owner string, defaults model.Settings, patch model.SettingsPatch) error {
	row := defaults
	row.OwnerID = owner
	var sets []string

	if patch.RequiredPercent != nil {
		row.RequiredPercent = *patch.RequiredPercent
		sets = append(sets, "required_percent = excluded.required_percent")
	}
	if patch.RoundingMode != nil {
		row.RoundingMode = *patch.RoundingMode
		sets = append(sets, "rounding_mode = excluded.rounding_mode")
	}
	if patch.CreditWeekdays != nil {
		row.CreditWeekdays = patch.CreditWeekdays
		sets = append(sets, "credit_weekdays_json = excluded.credit_weekdays_json")
	}
	if patch.MonFriHolidayTreatment != nil {
		row.MonFriHolidayTreatment = *patch.MonFriHolidayTreatment
		sets = append(sets, "monfri_holiday_treatment = excluded.monfri_holiday_treatment")
	}
	if patch.Country != nil {
		row.Country = *patch.Country
		sets = append(sets, "country = excluded.country")
	}
	if patch.Region != nil {
		row.Region = *patch.Region
		sets = append(sets, "state = excluded.state")
	}
	if patch.Timezone != nil {
		row.Timezone = *patch.Timezone
		sets = append(sets, "timezone = excluded.timezone")
	}

	weekdaysJSON, err := json.Marshal(row.CreditWeekdays)
	if err != nil {
		return fmt.Errorf("marshal credit weekdays: %w", err)
	}

	query := `INSERT INTO settings (user_id, required_percent, rounding_mode, credit_weekdays_json,
	                                monfri_holiday_treatment, country, state, timezone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if len(sets) == 0 {
		query += ` ON CONFLICT(user_id) DO NOTHING`
	} else {
		query += ` ON CONFLICT(user_id) DO UPDATE SET ` + strings.Join(sets, ", ")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, query,
		row.OwnerID, row.RequiredPercent, string(row.RoundingMode),
		string(weekdaysJSON), string(row.MonFriHolidayTreatment),
		row.Country, row.Region, row.Timezone)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.logger.Info("closing sqlite store")
	return s.db.Close()
}
