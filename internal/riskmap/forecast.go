package riskmap

import (
	"context"
	"fmt"
	"time"

	"github.com/P4za/alagAlert/internal/domain"
)

// ForecastReport is the hourly forecast for a point with its summary and
// classified risk.
type ForecastReport struct {
	Lat          float64               `json:"lat"`
	Lon          float64               `json:"lon"`
	ForecastDays int                   `json:"forecast_days"`
	Timezone     string                `json:"timezone"`
	Date         string                `json:"date,omitempty"`
	Hourly       domain.ForecastSeries `json:"hourly"`
	Summary      domain.DaySummary     `json:"summary"`
	RiskLevel    domain.RiskLevel      `json:"riskLevel"`
	RiskScore    float64               `json:"riskScore"`
}

// Forecast fetches the hourly forecast for q, optionally narrowed to one day,
// and classifies it. An empty timezone uses the service timezone; an unknown
// one is invalid input.
func (s *Service) Forecast(ctx context.Context, q domain.ForecastQuery, date string) (ForecastReport, error) {
	if date != "" {
		if _, err := domain.ParseDate(date, s.loc); err != nil {
			return ForecastReport{}, err
		}
	}
	if q.Timezone == "" {
		q.Timezone = s.loc.String()
	} else if _, err := time.LoadLocation(q.Timezone); err != nil {
		return ForecastReport{}, fmt.Errorf("timezone %q: %w", q.Timezone, domain.ErrInvalidInput)
	}
	q = q.Normalize()

	series, err := s.forecasts.FetchHourlyForecast(ctx, q)
	if err != nil {
		return ForecastReport{}, err
	}
	series = domain.FilterByDate(series, date)
	if series == nil {
		series = domain.ForecastSeries{}
	}

	summary := domain.Summarize(series)
	risk := domain.Classify(summary.TotalPrecipitation, summary.AvgProbability())
	s.metrics.RiskClassifications.WithLabelValues(risk.String()).Inc()

	return ForecastReport{
		Lat:          q.Lat,
		Lon:          q.Lon,
		ForecastDays: q.ForecastDays,
		Timezone:     q.Timezone,
		Date:         date,
		Hourly:       series,
		Summary:      summary,
		RiskLevel:    risk,
		RiskScore:    risk.Score(),
	}, nil
}
