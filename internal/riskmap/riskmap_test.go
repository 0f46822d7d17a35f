package riskmap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/P4za/alagAlert/internal/catalog"
	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var brt = time.FixedZone("BRT", -3*60*60)

const today = "2026-10-18"

// --- fakes ---

type fakeForecasts struct {
	mu       sync.Mutex
	byLat    map[float64]domain.ForecastSeries
	failLat  map[float64]error
	fallback domain.ForecastSeries
	queries  []domain.ForecastQuery

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (f *fakeForecasts) FetchHourlyForecast(_ context.Context, q domain.ForecastQuery) (domain.ForecastSeries, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if err, ok := f.failLat[q.Lat]; ok {
		return nil, err
	}
	if s, ok := f.byLat[q.Lat]; ok {
		return s, nil
	}
	return f.fallback, nil
}

type fakeResolver struct {
	codes map[string]string
}

func (r *fakeResolver) ResolveCityCode(_ context.Context, city, uf string) (string, error) {
	if code, ok := r.codes[city+"/"+uf]; ok {
		return code, nil
	}
	return "", fmt.Errorf("ibge code for %s/%s: %w", city, uf, domain.ErrNotFound)
}

type fakeDistricts struct {
	enabled bool
	byCode  map[string][]domain.District
}

func (d *fakeDistricts) Enabled() bool { return d.enabled }

func (d *fakeDistricts) Districts(_ context.Context, code string) ([]domain.District, error) {
	return d.byCode[code], nil
}

type fakeGeocoder struct {
	mu      sync.Mutex
	places  map[string]domain.GeocodingResult
	queries []string
}

func (g *fakeGeocoder) ForwardGeocode(_ context.Context, query string) (domain.GeocodingResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, query)
	if r, ok := g.places[query]; ok {
		return r, nil
	}
	return domain.GeocodingResult{}, fmt.Errorf("geocode %q: %w", query, domain.ErrNotFound)
}

// --- helpers ---

func f64(v float64) *float64 { return &v }
func intp(v int) *int { return &v }

// hours builds a series on date with the given per-hour precipitation and
// probability.
func hours(date string, precip []float64, prob []int) domain.ForecastSeries {
	out := make(domain.ForecastSeries, len(precip))
	for i := range precip {
		out[i] = domain.HourlyRecord{
			Timestamp:                fmt.Sprintf("%sT%02d:00", date, i),
			Temperature:              f64(22),
			Precipitation:            f64(precip[i]),
			PrecipitationProbability: intp(prob[i]),
			WindSpeed:                f64(10),
		}
	}
	return out
}

func dryDay(date string) domain.ForecastSeries {
	return hours(date, []float64{0, 0, 0, 0}, []int{5, 5, 5, 5})
}

func stormDay(date string) domain.ForecastSeries {
	return hours(date, []float64{10, 8, 6, 4}, []int{90, 90, 80, 80})
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load()
	require.NoError(t, err)
	return c
}

func testClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2026, 10, 18, 9, 30, 0, 0, brt))
}

func newTestService(t *testing.T, forecasts domain.ForecastSource) (*Service, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetricsForTesting()
	svc := New(testCatalog(t), forecasts, nil, nil, nil, Options{
		Clock:    testClock(),
		Location: brt,
	}, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, m
}

func levels(fc domain.FeatureCollection) map[string]domain.RiskLevel {
	out := make(map[string]domain.RiskLevel, len(fc.Features))
	for _, f := range fc.Features {
		out[f.Properties.Name] = f.Properties.RiskLevel
	}
	return out
}

func names(fc domain.FeatureCollection) []string {
	out := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, f.Properties.Name)
	}
	return out
}

func riskPtr(l domain.RiskLevel) *domain.RiskLevel { return &l }
