package holiday

import (
	"context"
	"time"
)

// Map holds the public holidays of one country/region/year, keyed by
// ISO calendar date (YYYY-MM-DD) with the holiday name as value.
type Map map[string]string

// NameFor returns the holiday name for the given date and whether the
// date is a holiday at all.
func (m Map) NameFor(date time.Time) (string, bool) {
	name, ok := m[date.Format("2006-01-02")]
	return name, ok
}

// Oracle answers public-holiday lookups. Implementations wrap an external
// holiday-calendar capability; lookup failures are recoverable and callers
// treat them as "no holidays known".
type Oracle interface {
	// HolidaysFor returns the holidays for the given country/region/year
	HolidaysFor(ctx context.Context, country, region string, year int) (Map, error)
}

// NoopOracle is an Oracle that knows no holidays. Used when no holiday
// data source is configured and in tests.
type NoopOracle struct{}

func NewNoopOracle() *NoopOracle { return &NoopOracle{} }

func (n *NoopOracle) HolidaysFor(_ context.Context, _, _ string, _ int) (Map, error) {
	return Map{}, nil
}
