// Package mapbox geocodes free-text place queries with the Mapbox Geocoding
// API. It is the alternative to Nominatim when GEOCODER=mapbox.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
)

const serviceName = "mapbox"

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/geocoding/v5/mapbox.places",
		metrics: metrics,
		logger:  logger,
	}
}

// ForwardGeocode converts a free-text place query to coordinates, restricted
// to Brazil.
func (c *Client) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"country":      {"br"},
		"types":        {"place,locality,neighborhood"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		return domain.GeocodingResult{}, &domain.UpstreamError{Service: serviceName, Target: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		return domain.GeocodingResult{}, &domain.UpstreamError{Service: serviceName, Target: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", body)}
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		return domain.GeocodingResult{}, &domain.UpstreamError{Service: serviceName, Target: query, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(mapboxResp.Features) == 0 || len(mapboxResp.Features[0].Center) != 2 {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "empty").Inc()
		c.logger.Debug("mapbox returned no match", "query", query)
		return domain.GeocodingResult{}, fmt.Errorf("geocode %q: %w", query, domain.ErrNotFound)
	}

	f := mapboxResp.Features[0]
	c.metrics.UpstreamRequests.WithLabelValues(serviceName, "success").Inc()
	return domain.GeocodingResult{
		Lon:         f.Center[0],
		Lat:         f.Center[1],
		DisplayName: f.PlaceName,
		Confidence:  f.Relevance,
	}, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}
