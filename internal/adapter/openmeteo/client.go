// Package openmeteo fetches hourly forecasts from the Open-Meteo API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
)

const (
	// DefaultURL is the public Open-Meteo forecast endpoint.
	DefaultURL = "https://api.open-meteo.com/v1/forecast"

	serviceName   = "open-meteo"
	hourlyMetrics = "temperature_2m,precipitation,precipitation_probability,wind_speed_10m"
)

// Client implements domain.ForecastSource with one upstream request per call.
// It does no caching; wrap it in a CachedForecaster.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchHourlyForecast requests hourly temperature, precipitation, precipitation
// probability and wind speed for q. The query is normalized first.
func (c *Client) FetchHourlyForecast(ctx context.Context, q domain.ForecastQuery) (domain.ForecastSeries, error) {
	q = q.Normalize()
	target := fmt.Sprintf("lat=%.4f lon=%.4f", q.Lat, q.Lon)

	params := url.Values{
		"latitude":      {strconv.FormatFloat(q.Lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(q.Lon, 'f', -1, 64)},
		"hourly":        {hourlyMetrics},
		"forecast_days": {strconv.Itoa(q.ForecastDays)},
		"timezone":      {q.Timezone},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ForecastAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, &domain.UpstreamError{Service: serviceName, Target: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, &domain.UpstreamError{
			Service:    serviceName,
			Target:     target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", body),
		}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, &domain.UpstreamError{Service: serviceName, Target: target, Err: fmt.Errorf("decode response: %w", err)}
	}

	c.metrics.ForecastRequests.WithLabelValues("success").Inc()
	series := body.Hourly.series()
	c.logger.Debug("forecast fetched", "lat", q.Lat, "lon", q.Lon, "days", q.ForecastDays, "hours", len(series))
	return series, nil
}

// Open-Meteo API response types. Metric arrays are index-aligned with Time and
// may contain nulls or be shorter than Time.

type response struct {
	Hourly hourly `json:"hourly"`
}

type hourly struct {
	Time                     []string   `json:"time"`
	Temperature              []*float64 `json:"temperature_2m"`
	Precipitation            []*float64 `json:"precipitation"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	WindSpeed                []*float64 `json:"wind_speed_10m"`
}

func (h hourly) series() domain.ForecastSeries {
	out := make(domain.ForecastSeries, len(h.Time))
	for i, ts := range h.Time {
		out[i] = domain.HourlyRecord{
			Timestamp:                ts,
			Temperature:              at(h.Temperature, i),
			Precipitation:            at(h.Precipitation, i),
			PrecipitationProbability: percentAt(h.PrecipitationProbability, i),
			WindSpeed:                at(h.WindSpeed, i),
		}
	}
	return out
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) || values[i] == nil {
		return nil
	}
	v := *values[i]
	return &v
}

func percentAt(values []*float64, i int) *int {
	v := at(values, i)
	if v == nil {
		return nil
	}
	p := int(*v)
	return &p
}
