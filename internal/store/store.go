package store

import (
	"context"
	"errors"
	"time"

	"github.com/username/office-tracker/internal/model"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Store is the narrow CRUD contract over the backing storage service.
// All upsert-style operations are atomic at the storage layer, keyed by
// (owner, date) for days and (owner) for settings, so concurrent callers
// can never create duplicate rows.
type Store interface {
	// DaysInRange returns an owner's day records with from <= date < to,
	// ordered by date
	DaysInRange(ctx context.Context, owner string, from, to time.Time) ([]model.DayRecord, error)

	// InsertDays inserts the given records, silently skipping any that
	// already exist for their (owner, date). Returns the number inserted.
	InsertDays(ctx context.Context, days []model.DayRecord) (int, error)

	// UpsertDay merges the non-nil patch fields into the record for
	// (owner, date), inserting a fresh record with defaults when absent.
	// Single atomic statement; last write wins.
	UpsertDay(ctx context.Context, owner string, date time.Time, patch model.DayPatch) error

	// SetStatusRange sets the status on every existing record with
	// start <= date <= end and returns the number of rows affected.
	// Missing records are not created.
	SetStatusRange(ctx context.Context, owner string, start, end time.Time, status model.Status) (int, error)

	// GetSettings returns the owner's settings row, or ErrNotFound
	GetSettings(ctx context.Context, owner string) (*model.Settings, error)

	// InsertSettings inserts a settings row unless one already exists
	// for the owner. Returns true when a row was inserted.
	InsertSettings(ctx context.Context, settings model.Settings) (bool, error)

	// UpsertSettings merges the non-nil patch fields into the owner's
	// settings row, inserting defaults first when absent
	UpsertSettings(ctx context.Context, owner string, defaults model.Settings, patch model.SettingsPatch) error

	Close() error
}
