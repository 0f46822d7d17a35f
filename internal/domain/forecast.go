package domain

import (
	"context"
	"strings"
)

// DefaultTimezone is the timezone forecasts are requested in when the caller
// does not name one.
const DefaultTimezone = "America/Sao_Paulo"

// Forecast day bounds accepted by the upstream forecast API.
const (
	MinForecastDays = 1
	MaxForecastDays = 7
)

// HourlyRecord is one hour of forecast data. Nil metrics were missing or null
// in the upstream response for that hour.
type HourlyRecord struct {
	Timestamp                string   `json:"timestamp"` // ISO-8601, hour resolution
	Temperature              *float64 `json:"temperature"`
	Precipitation            *float64 `json:"precipitation"`
	PrecipitationProbability *int     `json:"precipitation_probability"`
	WindSpeed                *float64 `json:"wind_speed"`
}

// ForecastSeries is an ordered run of hourly records for one location and
// day-range query. Series handed out by a cache are shared and must be treated
// as read-only.
type ForecastSeries []HourlyRecord

// ForecastQuery identifies a forecast request.
type ForecastQuery struct {
	Lat          float64
	Lon          float64
	ForecastDays int
	Timezone     string
}

// Normalize clamps the day count into [MinForecastDays, MaxForecastDays] and
// fills in the default timezone.
func (q ForecastQuery) Normalize() ForecastQuery {
	q.ForecastDays = ClampForecastDays(q.ForecastDays)
	if q.Timezone == "" {
		q.Timezone = DefaultTimezone
	}
	return q
}

// ForecastSource fetches hourly forecasts.
type ForecastSource interface {
	FetchHourlyForecast(ctx context.Context, q ForecastQuery) (ForecastSeries, error)
}

// ClampForecastDays silently corrects out-of-range day counts.
func ClampForecastDays(days int) int {
	switch {
	case days < MinForecastDays:
		return MinForecastDays
	case days > MaxForecastDays:
		return MaxForecastDays
	default:
		return days
	}
}

// FilterByDate returns the records whose timestamp starts with date
// (YYYY-MM-DD). An empty date returns the series unchanged.
func FilterByDate(series ForecastSeries, date string) ForecastSeries {
	if date == "" {
		return series
	}
	out := make(ForecastSeries, 0, len(series))
	for _, r := range series {
		if strings.HasPrefix(r.Timestamp, date) {
			out = append(out, r)
		}
	}
	return out
}
