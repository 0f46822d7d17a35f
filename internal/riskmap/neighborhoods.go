package riskmap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/P4za/alagAlert/internal/domain"
	"golang.org/x/sync/errgroup"
)

// NeighborhoodQuery selects a city and the forecast window to classify.
type NeighborhoodQuery struct {
	City         string
	UF           string
	ForecastDays int               // clamped to [1, 7]
	RiskLevel    *domain.RiskLevel // keep only neighborhoods at this level
	Date         string            // summarize only this day when set
}

// neighborhoodResult is the outcome of one neighborhood's forecast.
type neighborhoodResult struct {
	feature domain.Feature
	err     error
}

// NeighborhoodsWithWeather classifies each known neighborhood of a city from
// its live forecast. Neighborhoods come from the catalog, falling back to
// district discovery. Forecasts are fetched concurrently; a failed fetch drops
// only that neighborhood and is listed in metadata.failed. An unknown city is
// an empty collection with a message, not an error. A date before today or
// past the last forecast day is invalid input.
func (s *Service) NeighborhoodsWithWeather(ctx context.Context, q NeighborhoodQuery) (domain.FeatureCollection, error) {
	q.City = strings.TrimSpace(q.City)
	q.UF = strings.ToUpper(strings.TrimSpace(q.UF))
	q.ForecastDays = domain.ClampForecastDays(q.ForecastDays)

	date, days, err := s.resolveDate(q.Date)
	if err != nil {
		return domain.FeatureCollection{}, err
	}
	if q.Date != "" {
		if days < 0 || days >= domain.MaxForecastDays {
			return domain.FeatureCollection{}, fmt.Errorf("date %s is %d days from today, outside the %d-day forecast window: %w",
				q.Date, days, domain.MaxForecastDays, domain.ErrInvalidInput)
		}
		if days >= q.ForecastDays {
			// Fetch far enough ahead to cover the requested day.
			q.ForecastDays = days + 1
		}
	}

	if ct, ok := s.catalog.Lookup(q.City, q.UF); ok {
		q.City, q.UF = ct.Name, ct.UF
	}
	neighborhoods, source := s.neighborhoodsFor(ctx, q.City, q.UF)
	if len(neighborhoods) == 0 {
		fc := domain.NewFeatureCollection()
		fc.Metadata = map[string]any{
			"city":           q.City,
			"uf":             q.UF,
			"message":        fmt.Sprintf("no neighborhoods registered for %s", q.City),
			"total_features": 0,
		}
		return fc, nil
	}

	results := make([]neighborhoodResult, len(neighborhoods))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, n := range neighborhoods {
		g.Go(func() error {
			f, err := s.neighborhoodFeature(ctx, n, q, date)
			results[i] = neighborhoodResult{feature: f, err: err}
			return nil
		})
	}
	_ = g.Wait()

	fc := domain.NewFeatureCollection()
	failed := []string{}
	for i, r := range results {
		if r.err != nil {
			s.logger.Warn("neighborhood forecast failed",
				"city", q.City,
				"area", neighborhoods[i].Name,
				"lat", neighborhoods[i].Lat,
				"lon", neighborhoods[i].Lon,
				"error", r.err,
			)
			failed = append(failed, neighborhoods[i].Name)
			continue
		}
		if q.RiskLevel != nil && r.feature.Properties.RiskLevel != *q.RiskLevel {
			continue
		}
		fc.Features = append(fc.Features, r.feature)
	}
	if err := ctx.Err(); err != nil {
		return domain.FeatureCollection{}, err
	}

	fc.Metadata = map[string]any{
		"city":             q.City,
		"uf":               q.UF,
		"source":           source,
		"forecast_days":    q.ForecastDays,
		"date":             date,
		"total_features":   len(fc.Features),
		"filtered_by_risk": riskFilterValue(q.RiskLevel),
		"failed":           failed,
	}
	return fc, nil
}

// neighborhoodFeature runs Fetcher, FilterByDate, Summarize, Classify and
// ToFeature for one neighborhood.
func (s *Service) neighborhoodFeature(ctx context.Context, n domain.Neighborhood, q NeighborhoodQuery, date string) (domain.Feature, error) {
	series, err := s.forecasts.FetchHourlyForecast(ctx, domain.ForecastQuery{
		Lat:          n.Lat,
		Lon:          n.Lon,
		ForecastDays: q.ForecastDays,
		Timezone:     s.loc.String(),
	})
	if err != nil {
		return domain.Feature{}, fmt.Errorf("forecast for %s: %w", n.Name, err)
	}
	if q.Date != "" {
		series = domain.FilterByDate(series, q.Date)
	}
	summary := domain.Summarize(series)
	risk := domain.Classify(summary.TotalPrecipitation, summary.AvgProbability())
	s.metrics.RiskClassifications.WithLabelValues(risk.String()).Inc()

	area := domain.RiskArea{
		Name:     n.Name,
		Ring:     domain.SquareAround(n.Lat, n.Lon, NeighborhoodSquareKm),
		BaseRisk: risk,
	}
	f := domain.ToFeature(area, risk, date, false)
	f.Properties.City = q.City
	f.Properties.UF = q.UF
	f.Properties.Weather = &summary
	return f, nil
}

// neighborhoodsFor returns the neighborhoods of a city and where they came
// from ("catalog" or "districts").
func (s *Service) neighborhoodsFor(ctx context.Context, city, uf string) ([]domain.Neighborhood, string) {
	if known := s.catalog.Neighborhoods(city, uf); len(known) > 0 {
		return known, "catalog"
	}
	if !s.districtDiscoveryEnabled() {
		return nil, ""
	}
	found, err := s.DistrictsWithCoordinates(ctx, city, uf)
	if err != nil {
		s.logger.Warn("district discovery failed", "city", city, "uf", uf, "error", err)
		return nil, ""
	}
	return found, "districts"
}

func (s *Service) districtDiscoveryEnabled() bool {
	return s.cities != nil && s.districts != nil && s.geocoder != nil && s.districts.Enabled()
}

// DistrictsWithCoordinates resolves the city's IBGE code, lists its districts
// (at most the configured limit) and geocodes each as
// "<district>, <city>, <uf>, Brasil". Districts the geocoder cannot place are
// skipped.
func (s *Service) DistrictsWithCoordinates(ctx context.Context, city, uf string) ([]domain.Neighborhood, error) {
	if !s.districtDiscoveryEnabled() {
		return []domain.Neighborhood{}, nil
	}
	city = strings.TrimSpace(city)
	uf = strings.ToUpper(strings.TrimSpace(uf))

	code, err := s.cities.ResolveCityCode(ctx, city, uf)
	if err != nil {
		return nil, fmt.Errorf("resolve %s/%s: %w", city, uf, err)
	}
	districts, err := s.districts.Districts(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("districts of %s/%s: %w", city, uf, err)
	}
	if len(districts) > s.districtLimit {
		districts = districts[:s.districtLimit]
	}

	out := make([]domain.Neighborhood, 0, len(districts))
	for _, d := range districts {
		if d.Name == "" {
			continue
		}
		query := fmt.Sprintf("%s, %s, %s, Brasil", d.Name, city, uf)
		res, err := s.geocoder.ForwardGeocode(ctx, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("geocode district failed", "district", d.Name, "city", city, "error", err)
			}
			continue
		}
		out = append(out, domain.Neighborhood{Name: d.Name, Lat: res.Lat, Lon: res.Lon})
	}
	return out, nil
}
