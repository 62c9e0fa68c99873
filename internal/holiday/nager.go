package holiday

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL     = "https://date.nager.at"
	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 24 * time.Hour
)

// NagerOracle implements Oracle using the Nager.Date public-holiday API.
// Responses are cached per (country, year) with a TTL so a month render
// hits the network at most once a day.
type NagerOracle struct {
	client   *resty.Client
	logger   *zap.Logger
	cacheTTL time.Duration
	cacheMu  sync.RWMutex
	cache    map[string]*cachedYear
}

type cachedYear struct {
	holidays  []nagerHoliday
	fetchedAt time.Time
}

// nagerHoliday mirrors one entry of the Nager.Date v3 response
type nagerHoliday struct {
	Date      string   `json:"date"` // YYYY-MM-DD
	LocalName string   `json:"localName"`
	Name      string   `json:"name"`
	Global    bool     `json:"global"`
	Counties  []string `json:"counties"` // subdivision codes like "US-CA", null when nationwide
}

// NewNagerOracle creates a NagerOracle. An empty baseURL selects the public
// Nager.Date endpoint; a zero cacheTTL selects the 24h default.
func NewNagerOracle(baseURL string, cacheTTL time.Duration, logger *zap.Logger) *NagerOracle {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultHTTPTimeout)

	return &NagerOracle{
		client:   client,
		logger:   logger,
		cacheTTL: cacheTTL,
		cache:    make(map[string]*cachedYear),
	}
}

// HolidaysFor returns the public holidays for the given country code
// (ISO 3166-1 alpha-2, e.g. "US"), optional region (subdivision code
// without the country prefix, e.g. "CA") and year.
func (o *NagerOracle) HolidaysFor(ctx context.Context, country, region string, year int) (Map, error) {
	if country == "" {
		return nil, fmt.Errorf("country code is required")
	}
	country = strings.ToUpper(country)

	holidays, err := o.yearHolidays(ctx, country, year)
	if err != nil {
		return nil, err
	}

	subdivision := ""
	if region != "" {
		subdivision = country + "-" + strings.ToUpper(region)
	}

	result := make(Map)
	for _, h := range holidays {
		if !appliesTo(h, subdivision) {
			continue
		}
		name := h.LocalName
		if name == "" {
			name = h.Name
		}
		result[h.Date] = name
	}

	return result, nil
}

// appliesTo reports whether a holiday applies nationwide or to the
// given subdivision
func appliesTo(h nagerHoliday, subdivision string) bool {
	if h.Global || len(h.Counties) == 0 {
		return true
	}
	if subdivision == "" {
		return false
	}
	for _, county := range h.Counties {
		if county == subdivision {
			return true
		}
	}
	return false
}

// yearHolidays returns the raw holiday list for a country/year, from
// cache when fresh
func (o *NagerOracle) yearHolidays(ctx context.Context, country string, year int) ([]nagerHoliday, error) {
	cacheKey := fmt.Sprintf("%s-%d", country, year)

	o.cacheMu.RLock()
	if cached, ok := o.cache[cacheKey]; ok {
		if time.Since(cached.fetchedAt) < o.cacheTTL {
			o.cacheMu.RUnlock()
			o.logger.Debug("Using cached holidays",
				zap.String("country", country),
				zap.Int("year", year))
			return cached.holidays, nil
		}
	}
	o.cacheMu.RUnlock()

	var holidays []nagerHoliday
	resp, err := o.client.R().
		SetContext(ctx).
		SetResult(&holidays).
		Get(fmt.Sprintf("/api/v3/PublicHolidays/%d/%s", year, country))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("holiday API returned status %d for %s/%d", resp.StatusCode(), country, year)
	}

	o.cacheMu.Lock()
	o.cache[cacheKey] = &cachedYear{holidays: holidays, fetchedAt: time.Now()}
	o.cacheMu.Unlock()

	o.logger.Info("Holidays fetched",
		zap.String("country", country),
		zap.Int("year", year),
		zap.Int("count", len(holidays)))

	return holidays, nil
}

// ClearCache drops all cached holiday data
func (o *NagerOracle) ClearCache() {
	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()
	o.cache = make(map[string]*cachedYear)
	o.logger.Info("Holiday cache cleared")
}
