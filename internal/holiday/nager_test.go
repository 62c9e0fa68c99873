package holiday

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/office-tracker/pkg/dateutil"
)

const sampleResponse = `[
	{"date":"2024-01-01","localName":"New Year's Day","name":"New Year's Day","global":true,"counties":null},
	{"date":"2024-03-31","localName":"César Chávez Day","name":"César Chávez Day","global":false,"counties":["US-CA","US-TX"]},
	{"date":"2024-07-04","localName":"Independence Day","name":"Independence Day","global":true,"counties":null}
]`

func newTestOracle(t *testing.T, handler http.HandlerFunc) (*NagerOracle, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewNagerOracle(server.URL, time.Hour, zap.NewNop()), server
}

func TestNagerOracle_HolidaysFor(t *testing.T) {
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/PublicHolidays/2024/US" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	})

	holidays, err := oracle.HolidaysFor(context.Background(), "us", "", 2024)
	if err != nil {
		t.Fatalf("HolidaysFor() error = %v", err)
	}

	// Nationwide holidays only; the California-only entry is filtered out
	if len(holidays) != 2 {
		t.Fatalf("holidays = %d, want 2", len(holidays))
	}

	name, ok := holidays.NameFor(dateutil.Date(2024, 7, 4))
	if !ok || name != "Independence Day" {
		t.Errorf("NameFor(2024-07-04) = %q, %v; want Independence Day, true", name, ok)
	}
	if _, ok := holidays.NameFor(dateutil.Date(2024, 3, 31)); ok {
		t.Error("regional holiday should not apply without a region")
	}
}

func TestNagerOracle_RegionFilter(t *testing.T) {
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	})

	holidays, err := oracle.HolidaysFor(context.Background(), "US", "ca", 2024)
	if err != nil {
		t.Fatalf("HolidaysFor() error = %v", err)
	}

	if len(holidays) != 3 {
		t.Fatalf("holidays = %d, want 3 (regional entry included for US-CA)", len(holidays))
	}
	if name, _ := holidays.NameFor(dateutil.Date(2024, 3, 31)); name != "César Chávez Day" {
		t.Errorf("NameFor(2024-03-31) = %q, want César Chávez Day", name)
	}
}

func TestNagerOracle_CachesPerYear(t *testing.T) {
	var calls int32
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := oracle.HolidaysFor(ctx, "US", "", 2024); err != nil {
			t.Fatalf("HolidaysFor() error = %v", err)
		}
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("API calls = %d, want 1 (cache should absorb repeats)", got)
	}

	oracle.ClearCache()
	if _, err := oracle.HolidaysFor(ctx, "US", "", 2024); err != nil {
		t.Fatalf("HolidaysFor() after ClearCache error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("API calls = %d, want 2 after cache clear", got)
	}
}

func TestNagerOracle_ServerError(t *testing.T) {
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := oracle.HolidaysFor(context.Background(), "XX", "", 2024); err == nil {
		t.Error("HolidaysFor() expected error for 404 response, got nil")
	}
}

func TestNagerOracle_EmptyCountry(t *testing.T) {
	oracle := NewNagerOracle("", time.Hour, zap.NewNop())
	if _, err := oracle.HolidaysFor(context.Background(), "", "", 2024); err == nil {
		t.Error("HolidaysFor() expected error for empty country, got nil")
	}
}

func TestNoopOracle(t *testing.T) {
	oracle := NewNoopOracle()
	holidays, err := oracle.HolidaysFor(context.Background(), "US", "CA", 2024)
	if err != nil {
		t.Fatalf("HolidaysFor() error = %v", err)
	}
	if len(holidays) != 0 {
		t.Errorf("NoopOracle returned %d holidays, want 0", len(holidays))
	}
}
