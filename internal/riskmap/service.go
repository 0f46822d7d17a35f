// Package riskmap assembles map-ready flood-risk collections from the catalog,
// live forecasts and the district lookup collaborators.
package riskmap

import (
	"context"
	"log/slog"
	"time"

	"github.com/P4za/alagAlert/internal/catalog"
	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultRadiusKm         = 10.0
	DefaultZoomLevel        = 10
	DefaultDistrictLimit    = 15
	DefaultConcurrency      = 4
	NeighborhoodSquareKm    = 1.5
	simplifiedZoomThreshold = 12
)

// Default map center (São Paulo) used when a caller gives no coordinates.
const (
	DefaultCenterLat = -23.5505
	DefaultCenterLon = -46.6333
)

// CityResolver resolves a municipality name to its IBGE code.
type CityResolver interface {
	ResolveCityCode(ctx context.Context, city, uf string) (string, error)
}

// DistrictSource lists the districts of a municipality by IBGE code.
type DistrictSource interface {
	Enabled() bool
	Districts(ctx context.Context, ibgeCode string) ([]domain.District, error)
}

// Options tunes a Service. Zero values pick the defaults.
type Options struct {
	Clock         clockwork.Clock
	Location      *time.Location
	DistrictLimit int
	Concurrency   int
}

// Service builds risk-area, neighborhood and forecast views.
type Service struct {
	catalog   *catalog.Catalog
	forecasts domain.ForecastSource
	cities    CityResolver
	districts DistrictSource
	geocoder  domain.Geocoder

	clock         clockwork.Clock
	loc           *time.Location
	districtLimit int
	concurrency   int

	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Service. cities, districts and geocoder may be nil, which
// disables district discovery.
func New(
	cat *catalog.Catalog,
	forecasts domain.ForecastSource,
	cities CityResolver,
	districts DistrictSource,
	geocoder domain.Geocoder,
	opts Options,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DistrictLimit <= 0 {
		opts.DistrictLimit = DefaultDistrictLimit
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Service{
		catalog:       cat,
		forecasts:     forecasts,
		cities:        cities,
		districts:     districts,
		geocoder:      geocoder,
		clock:         opts.Clock,
		loc:           opts.Location,
		districtLimit: opts.DistrictLimit,
		concurrency:   opts.Concurrency,
		metrics:       metrics,
		logger:        logger,
	}
}

// Today returns the current calendar date in the service timezone.
func (s *Service) Today() string {
	return s.clock.Now().In(s.loc).Format(domain.DateLayout)
}

// resolveDate validates an optional YYYY-MM-DD date. It returns the date to
// show (today when empty) and its offset in days from today.
func (s *Service) resolveDate(date string) (string, int, error) {
	now := s.clock.Now()
	if date == "" {
		return now.In(s.loc).Format(domain.DateLayout), 0, nil
	}
	t, err := domain.ParseDate(date, s.loc)
	if err != nil {
		return "", 0, err
	}
	return date, domain.DaysBetween(now, t, s.loc), nil
}

func riskFilterValue(level *domain.RiskLevel) any {
	if level == nil {
		return nil
	}
	return level.String()
}
