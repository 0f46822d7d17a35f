package riskmap

import (
	"context"
	"errors"
	"testing"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast_WholeSeries(t *testing.T) {
	series := append(dryDay(today), stormDay("2026-10-19")...)
	forecasts := &fakeForecasts{fallback: series}
	svc, _ := newTestService(t, forecasts)

	report, err := svc.Forecast(context.Background(), domain.ForecastQuery{Lat: -23.96, Lon: -46.33, ForecastDays: 2}, "")
	require.NoError(t, err)

	if diff := cmp.Diff(series, report.Hourly); diff != "" {
		t.Errorf("hourly mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, report.ForecastDays)
	assert.Equal(t, "BRT", report.Timezone)
	assert.InDelta(t, 28.0, report.Summary.TotalPrecipitation, 1e-9)
	assert.Equal(t, domain.RiskHigh, report.RiskLevel)
	assert.Equal(t, 0.85, report.RiskScore)
}

func TestForecast_DateFilter(t *testing.T) {
	forecasts := &fakeForecasts{fallback: append(dryDay(today), stormDay("2026-10-19")...)}
	svc, _ := newTestService(t, forecasts)

	report, err := svc.Forecast(context.Background(), domain.ForecastQuery{Lat: -23.96, Lon: -46.33, ForecastDays: 2}, today)
	require.NoError(t, err)
	assert.Len(t, report.Hourly, 4)
	assert.Equal(t, domain.RiskLow, report.RiskLevel)
	assert.Equal(t, today, report.Date)
}

func TestForecast_DateOutsideWindow(t *testing.T) {
	svc, _ := newTestService(t, &fakeForecasts{fallback: dryDay(today)})

	report, err := svc.Forecast(context.Background(), domain.ForecastQuery{}, "2026-11-01")
	require.NoError(t, err)
	assert.NotNil(t, report.Hourly)
	assert.Empty(t, report.Hourly)
	assert.Equal(t, 0.0, report.Summary.TotalPrecipitation)
	assert.Nil(t, report.Summary.AvgTemperature)
	assert.Equal(t, domain.RiskLow, report.RiskLevel)
}

func TestForecast_ClampsAndKeepsTimezone(t *testing.T) {
	forecasts := &fakeForecasts{fallback: dryDay(today)}
	svc, _ := newTestService(t, forecasts)

	report, err := svc.Forecast(context.Background(), domain.ForecastQuery{ForecastDays: 12, Timezone: "UTC"}, "")
	require.NoError(t, err)
	assert.Equal(t, 7, report.ForecastDays)
	require.Len(t, forecasts.queries, 1)
	assert.Equal(t, "UTC", forecasts.queries[0].Timezone)
}

func TestForecast_MalformedDate(t *testing.T) {
	forecasts := &fakeForecasts{}
	svc, _ := newTestService(t, forecasts)

	_, err := svc.Forecast(context.Background(), domain.ForecastQuery{}, "2026/10/18")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, forecasts.queries, "no upstream call for invalid input")
}

func TestForecast_UnknownTimezone(t *testing.T) {
	forecasts := &fakeForecasts{fallback: dryDay(today)}
	svc, _ := newTestService(t, forecasts)

	_, err := svc.Forecast(context.Background(), domain.ForecastQuery{Lat: -23.96, Lon: -46.33, Timezone: "Mars/Olympus_Mons"}, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Mars/Olympus_Mons")
	assert.Empty(t, forecasts.queries, "no upstream call for invalid input")

	_, err = svc.Forecast(context.Background(), domain.ForecastQuery{Lat: -23.96, Lon: -46.33, Timezone: "America/Manaus"}, "")
	require.NoError(t, err)
	require.Len(t, forecasts.queries, 1)
	assert.Equal(t, "America/Manaus", forecasts.queries[0].Timezone)
}

func TestForecast_UpstreamFailure(t *testing.T) {
	forecasts := &fakeForecasts{failLat: map[float64]error{
		-23.96: &domain.UpstreamError{Service: "open-meteo", Err: errors.New("connection refused")},
	}}
	svc, _ := newTestService(t, forecasts)

	_, err := svc.Forecast(context.Background(), domain.ForecastQuery{Lat: -23.96}, "")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
