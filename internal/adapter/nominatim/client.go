// Package nominatim geocodes free-text place queries with OpenStreetMap
// Nominatim.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
)

const (
	// DefaultURL is the public Nominatim instance.
	DefaultURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent identifies the service, as the Nominatim usage policy requires.
	DefaultUserAgent = "AlagAlert/1.0"

	serviceName = "nominatim"
)

// Client implements domain.Geocoder using the Nominatim search API. Callers
// are responsible for honouring the 1 request per second policy; see
// geocoding.RateLimited.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// ForwardGeocode returns the first search hit for query.
func (c *Client) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

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

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		return domain.GeocodingResult{}, &domain.UpstreamError{Service: serviceName, Target: query, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(places) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "empty").Inc()
		return domain.GeocodingResult{}, fmt.Errorf("geocode %q: %w", query, domain.ErrNotFound)
	}

	p := places[0]
	lat, latErr := strconv.ParseFloat(p.Lat, 64)
	lon, lonErr := strconv.ParseFloat(p.Lon, 64)
	if latErr != nil || lonErr != nil || (lat == 0 && lon == 0) {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "empty").Inc()
		c.logger.Warn("nominatim returned unusable coordinates", "query", query, "lat", p.Lat, "lon", p.Lon)
		return domain.GeocodingResult{}, fmt.Errorf("geocode %q: %w", query, domain.ErrNotFound)
	}

	c.metrics.UpstreamRequests.WithLabelValues(serviceName, "success").Inc()
	return domain.GeocodingResult{
		Lat:         lat,
		Lon:         lon,
		DisplayName: p.DisplayName,
		Confidence:  p.Importance,
	}, nil
}

// Nominatim API response types. Coordinates arrive as strings.

type place struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}
